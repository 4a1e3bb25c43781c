package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/graphrun/runner"
)

// inputSpec is one entry of the --inputs JSON file.
type inputSpec struct {
	Name   string    `json:"name"`
	Shape  []uint64  `json:"shape"`
	Values []float32 `json:"values"`
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run ARTIFACT",
		Short: "Execute a compiled graph artifact once",
		Long: `Execute a compiled graph artifact once and write each output tensor to
a <name>.out file containing its raw device bytes.

ARTIFACT is a local path or a gs://bucket/object reference.

Input values are optional; without them the graph runs on whatever default
state the input tensors hold.`,
		Args: cobra.ExactArgs(1),
		RunE: runHandler,
	}

	cmd.Flags().String("driver", "sim", "device driver to run on")
	cmd.Flags().String("name", "run", "name for this run in logs and errors")
	cmd.Flags().String("out", "", "directory for output tensor files (default: working directory)")
	cmd.Flags().String("inputs", "", "JSON file with input tensors: [{name, shape, values}, ...]")

	_ = viper.BindPFlag("driver", cmd.Flags().Lookup("driver"))
	_ = viper.BindPFlag("out", cmd.Flags().Lookup("out"))

	return cmd
}

func runHandler(cmd *cobra.Command, args []string) error {
	runName, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	inputsPath, err := cmd.Flags().GetString("inputs")
	if err != nil {
		return err
	}

	req := runner.Request{
		Artifact: args[0],
		Name:     runName,
	}
	if inputsPath != "" {
		specs, err := readInputSpecs(inputsPath)
		if err != nil {
			return err
		}
		for _, s := range specs {
			req.InputNames = append(req.InputNames, s.Name)
			req.Inputs = append(req.Inputs, s.Values)
			req.InputShapes = append(req.InputShapes, s.Shape)
		}
	}

	ctx, err := runner.NewContext(viper.GetString("driver"), log.Logger)
	if err != nil {
		return err
	}
	defer ctx.Close()

	outDir := viper.GetString("out")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	res, err := ctx.Runner(runner.Options{OutputDir: outDir}).Run(cmd.Context(), req)
	if err != nil {
		// A partial result still carries harvested outputs; report them
		// before surfacing the failure.
		if res != nil {
			printResult(res)
		}
		return err
	}

	printResult(res)
	return nil
}

func readInputSpecs(path string) ([]inputSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inputs file: %w", err)
	}
	var specs []inputSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing inputs file %q: %w", path, err)
	}
	return specs, nil
}

func printResult(res *runner.RunResult) {
	fmt.Printf("runtime: %s\n", res.Runtime)
	for i := range res.Outputs {
		out := &res.Outputs[i]
		switch {
		case out.Float32() != nil:
			fmt.Printf("output[%d] float32 (%d elements): %v\n", i, len(out.Float32()), out.Float32())
		default:
			fmt.Printf("output[%d] bool (%d elements): %v\n", i, len(out.Bool()), out.Bool())
		}
	}
}

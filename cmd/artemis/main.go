// Command artemis is the direct-driver and script-evaluation front-end
// for the collector core: it dumps one artifact parser's output for a
// single input file, or evaluates a JavaScript collector script, without
// the TOML-driven collection-run orchestration (an external, unbundled
// front-end this core only exposes a contract to).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/puffyCid/artemis-sub004/pkg/rawio"
	"github.com/puffyCid/artemis-sub004/script"
)

// Exit codes per the CLI surface: 0 success, 1 partial/runtime failure,
// 2 configuration error.
const (
	exitOK             = 0
	exitPartialFailure = 1
	exitConfigError    = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	exitCode := exitOK

	rootCmd := &cobra.Command{
		Use:   "artemis",
		Short: "Host forensics artifact collector",
		Long:  "Artemis parses on-disk operating-system artifacts directly, or runs a JavaScript collector script against the same parser library.",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("artemis 0.1.0")
		},
	}

	var outPretty bool
	dumpCmd := &cobra.Command{
		Use:   "dump <artifact> <path>",
		Short: "Parse a single artifact file and print its decoded records as JSON",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runDump(args[0], args[1], outPretty); err != nil {
				fmt.Fprintln(os.Stderr, "artemis: dump:", err)
				exitCode = exitPartialFailure
			}
		},
	}
	dumpCmd.Flags().BoolVar(&outPretty, "pretty", false, "pretty-print the JSON output")

	var asyncEval bool
	scriptCmd := &cobra.Command{
		Use:   "script <file.js>",
		Short: "Evaluate a collector script and print its return value as JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runScript(args[0], asyncEval); err != nil {
				fmt.Fprintln(os.Stderr, "artemis: script:", err)
				exitCode = exitPartialFailure
			}
		},
	}
	scriptCmd.Flags().BoolVar(&asyncEval, "async", false, "drain the async job queue after evaluation")

	acquireCmd := &cobra.Command{
		Use:   "acquire <path>",
		Short: "Copy a path's raw bytes to stdout, bypassing OS file locks where needed",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := runAcquire(args[0]); err != nil {
				fmt.Fprintln(os.Stderr, "artemis: acquire:", err)
				exitCode = exitPartialFailure
			}
		},
	}

	collectCmd := &cobra.Command{
		Use:   "collect <toml>",
		Short: "Run a TOML-configured collection (not implemented by this core)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stderr, "artemis: collect: the TOML collection-run front-end is an external component; use 'dump' or 'script' directly against this core")
			exitCode = exitConfigError
		},
	}

	rootCmd.AddCommand(versionCmd, dumpCmd, scriptCmd, acquireCmd, collectCmd)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}
	return exitCode
}

func printJSON(v any, pretty bool) error {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runAcquire(path string) error {
	reader, err := rawio.Open(path, rawio.Options{})
	if err != nil {
		return err
	}
	defer reader.Close()

	data, err := reader.ReadAt(0, int(reader.Size()))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runScript(path string, async bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rt, err := script.NewRuntime(nil, script.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	var result any
	if async {
		result, err = rt.EvalAsync(string(data))
	} else {
		result, err = rt.Eval(string(data))
	}
	if err != nil {
		return err
	}
	return printJSON(result, false)
}

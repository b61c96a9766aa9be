// Command charts is a Lambda function that mirrors SACAA aeronautical charts
// into a file or S3 store. The same binary can invoke the function locally.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bjaus/invoke"
	"github.com/bjaus/invoke/internal/config"
	"github.com/bjaus/invoke/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "charts",
		Short: "Aeronautical chart mirror",
		Long: `charts downloads the aeronautical chart PDFs published by the South African
Civil Aviation Authority into a local directory or an S3 bucket.

Run "serve" inside AWS Lambda, or "invoke" to run the function locally.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); INVOKE_* variables override it")

	load := func() (*config.Config, error) {
		return config.Load(cfgFile)
	}

	root.AddCommand(newServeCmd(load), newInvokeCmd(load), newDetectCmd())
	return root
}

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Lambda runtime loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, prometheus.DefaultRegisterer, os.Stdout)
			if err != nil {
				return err
			}
			a.log.Info("Starting function", logger.Fields{"operation": operationName, "store": cfg.Charts.Store})
			lambda.Start(a.handler.Decorate(operationName))
			return nil
		},
	}
}

func newInvokeCmd(load func() (*config.Config, error)) *cobra.Command {
	var eventFile string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invoke the function once with an event",
		Long: `invoke runs the decorated function once, as Lambda would, with a generated
request id. The event is read from --event, or stdin when --event is "-" or
unset. Logs go to stderr and the result to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			event, err := readEvent(eventFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, prometheus.NewRegistry(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := lambdacontext.NewContext(cmd.Context(), &lambdacontext.LambdaContext{
				AwsRequestID: uuid.NewString(),
			})

			out, err := a.handler.Decorate(operationName)(ctx, event)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&eventFile, "event", "", "path to a JSON event file")
	return cmd
}

func newDetectCmd() *cobra.Command {
	var eventFile string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Print the event source of an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := readEvent(eventFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), invoke.DetectEventSource(event))
			return err
		},
	}
	cmd.Flags().StringVar(&eventFile, "event", "", "path to a JSON event file")
	return cmd
}

func readEvent(path string, stdin io.Reader) (json.RawMessage, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	return data, nil
}

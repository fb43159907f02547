package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/llm-gateway/app"
	"github.com/upb/llm-gateway/services/gateway"
)

var completeCmd = &cobra.Command{
	Use:   "complete [prompt]",
	Short: "Request a plain-text completion",
	Args:  cobra.ArbitraryArgs,
	RunE:  runComplete,
}

var completeJSONCmd = &cobra.Command{
	Use:   "complete-json [prompt]",
	Short: "Request a completion parsed as a single JSON value",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCompleteJSON,
}

func buildRequest(args []string, deps *app.Dependencies) (*gateway.CompletionRequest, error) {
	prompt, err := readPrompt(args)
	if err != nil {
		return nil, err
	}

	tier, err := parseTier(tierFlag)
	if err != nil {
		return nil, err
	}

	if !noSanitize {
		sanitized, report := deps.Sanitizer.Sanitize(prompt, 0, "cli_prompt")
		if report.Truncated {
			fmt.Fprintln(os.Stderr, "warning: prompt truncated during sanitization")
		}
		prompt = sanitized
	}

	return &gateway.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: systemFlag,
		Tier:         tier,
	}, nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := setup(ctx)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	req, err := buildRequest(args, deps)
	if err != nil {
		return err
	}

	result, err := deps.Gateway.Complete(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(result.Text)
	fmt.Fprintf(os.Stderr, "tier=%s model=%s elapsed=%s\n", result.Tier, result.Model, result.Elapsed)
	return nil
}

func runCompleteJSON(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := setup(ctx)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	req, err := buildRequest(args, deps)
	if err != nil {
		return err
	}

	value, err := deps.Gateway.CompleteJSON(ctx, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/irr/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct {
	research bool
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant"
}
func (*assistCmd) Usage() string {
	return `assist [-research] [<prompt>...]

  Start an interactive session with the AI assistant. It can run calculations
  and read the documentation topics.

  The Gemini client is configured from the environment (GEMINI_API_KEY).
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.research, "research", false, "let the assistant search the web for market assumptions")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	ctx = logger.WithContext(ctx)
	initialPrompt := strings.Join(f.Args(), " ")

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	experts := []*agent.Expert{agent.NewAnalyst(cfg.Assist.Model)}
	if c.research {
		experts = append(experts, agent.NewResearcher(cfg.Assist.Model))
	}
	a := agent.New(stdout, os.Stdin, cfg.Assist.Model, experts...)
	a.Print = func(w io.Writer, md string) {
		if err := printMarkdown(w, md, cfg.Report.WordWrap); err != nil {
			fmt.Fprintln(w, md)
		}
	}

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

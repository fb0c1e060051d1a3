package cmd

import (
	"flag"

	"github.com/etnz/irr/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the commands registered in c.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	c.VisitAll(func(f *flag.Flag) { root.Flags[f.Name] = predictFlag(f.Name) })
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = predictFlag(f.Name) })
		switch cmd.Name() {
		case "topic":
			sub.Args = predict.Set(topicNames())
		case "calc":
			sub.Args = predict.Files("*.json")
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func predictFlag(name string) complete.Predictor {
	switch name {
	case "config":
		return predict.Files("*.yaml")
	case "json", "monthly", "list", "research", "v":
		return predict.Nothing
	case "f":
		return predict.Set{"+6m", "+1y", "+2 quarters"}
	default:
		return predict.Something
	}
}

func topicNames() []string {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return topics
}

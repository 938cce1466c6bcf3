package cmd

import (
	"flag"

	"github.com/etnz/carry/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors suggest values for the flags that name files or dates.
var flagPredictors = map[string]complete.Predictor{
	"config": predict.Files("*.toml"),
	"data":   predict.Dirs("*"),
	"csv":    predict.Files("*.csv"),
	"p":      predict.Dirs("*"),
}

// argPredictors suggest the positional arguments of a command.
var argPredictors = map[string]complete.Predictor{
	"settlement": predict.Or(predict.Files("*.pdf"), predict.Files("*.txt")),
}

// Completion describes the command line of cts for shell completion: the global flags and,
// for each command, its flags and arguments.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(flag.CommandLine),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: predictFlags(fs), Args: argPredictors[c.Name()]}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, "readme"))
	}
	return root
}

func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		p, ok := flagPredictors[f.Name]
		if !ok {
			p = predict.Something
		}
		// boolean flags take no value.
		if b, isBool := f.Value.(interface{ IsBoolFlag() bool }); isBool && b.IsBoolFlag() {
			p = predict.Nothing
		}
		flags[f.Name] = p
	})
	return flags
}

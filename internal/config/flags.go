package config

import (
	"flag"
	"fmt"
	"io"
)

// Action tells the caller what to do after Parse.
type Action int

const (
	// Continue with the returned options.
	Continue Action = iota
	// Abort after usage or an example was printed. Not an error.
	Abort
)

func (a Action) String() string {
	if a == Abort {
		return "abort"
	}
	return "continue"
}

// bind registers every option flag on fs, long and short forms sharing
// one destination.
func bind(fs *flag.FlagSet, o *Options, configPath *string, help, example *bool) {
	fs.BoolVar(help, "help", false, "print usage and example message")
	fs.BoolVar(help, "h", false, "print usage and example message")
	fs.BoolVar(example, "example", false, "print details example")
	fs.BoolVar(example, "x", false, "print details example")

	fs.Float64Var(&o.Turn, "turn", o.Turn, "total number of turn")
	fs.Float64Var(&o.Turn, "t", o.Turn, "total number of turn")
	fs.Float64Var(&o.Accel, "accel", o.Accel, "acceleration turn/sec*sec")
	fs.Float64Var(&o.Accel, "a", o.Accel, "acceleration turn/sec*sec")
	fs.Float64Var(&o.Decel, "decel", o.Decel, "deceleration turn/sec*sec")
	fs.Float64Var(&o.Decel, "d", o.Decel, "deceleration turn/sec*sec")
	fs.Float64Var(&o.Speed, "speed", o.Speed, "maximum speed turn/sec")
	fs.Float64Var(&o.Speed, "s", o.Speed, "maximum speed turn/sec")

	fs.StringVar(configPath, "config", "", "YAML options file")
	fs.StringVar(&o.Planner, "planner", o.Planner, "step planner: constant or linear")
	fs.UintVar(&o.Compare, "compare", o.Compare, "constant planner step interval in ticks")
	fs.DurationVar(&o.Period, "period", o.Period, "control loop period")
	fs.IntVar(&o.Capacity, "capacity", o.Capacity, "step events recorded before stopping")
	fs.UintVar(&o.PulseWidth, "pulse-width", o.PulseWidth, "step pulse width in ticks")
	fs.StringVar(&o.Policy, "policy", o.Policy, "scheduling policy: fifo, rr or other")
	fs.IntVar(&o.Priority, "priority", o.Priority, "real-time priority")
	fs.StringVar(&o.Output, "output", o.Output, "step output: parallel, gpio or memory")
	fs.IntVar(&o.GPIOPin, "gpio-pin", o.GPIOPin, "BCM pin for gpio output")
	fs.StringVar(&o.Serial, "serial", o.Serial, "serial console device")
	fs.IntVar(&o.Baud, "baud", o.Baud, "serial console baud rate")
	fs.DurationVar(&o.Resolution, "resolution", o.Resolution, "jitter plot resolution per bar character")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level")
}

// Parse reads args (without the program name) into options.
//
// With no arguments it prints usage and continues with the defaults. Help,
// example, an unknown flag or a stray argument print usage and abort.
func Parse(args []string, stdout io.Writer) (Options, Action, error) {
	const prog = "rtstepper"
	o := Defaults()

	if len(args) == 0 {
		printUsage(stdout, prog)
		return o, Continue, o.Validate()
	}

	var (
		configPath    string
		help, example bool
	)
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { printUsage(stdout, prog) }
	bind(fs, &o, &configPath, &help, &example)

	if err := fs.Parse(args); err != nil {
		// The flag package has already printed the error and usage.
		return o, Abort, nil
	}

	switch {
	case help:
		printUsage(stdout, prog)
		return o, Abort, nil
	case example:
		printExample(stdout, prog)
		return o, Abort, nil
	}

	if rest := fs.Args(); len(rest) > 0 {
		for _, a := range rest {
			if a != "?" {
				fmt.Fprintf(stdout, "\nUnknown option: %s\n", a)
			}
		}
		fmt.Fprintln(stdout)
		printUsage(stdout, prog)
		return o, Abort, nil
	}

	if configPath != "" {
		base := Defaults()
		if err := Load(configPath, &base); err != nil {
			return o, Continue, err
		}
		// Flags given on the command line win over the file.
		var discard string
		var h, x bool
		over := flag.NewFlagSet(prog, flag.ContinueOnError)
		bind(over, &base, &discard, &h, &x)
		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "config" {
				return
			}
			if err := over.Set(f.Name, f.Value.String()); err != nil && setErr == nil {
				setErr = err
			}
		})
		if setErr != nil {
			return o, Continue, setErr
		}
		o = base
	}

	return o, Continue, o.Validate()
}

func printExample(w io.Writer, prog string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLE: ")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %s --turn 2.0 --accel 0.5 --decel 0.5 --speed 1.0 --planner linear\n", prog)
	fmt.Fprintln(w)
}

func printUsage(w io.Writer, prog string) {
	printExample(w, prog)
	fmt.Fprintln(w, "---------------------------------------------------------")
	fmt.Fprintln(w, "OPTION:")
	fmt.Fprintln(w, "     ?,                print usage and example message")
	fmt.Fprintln(w, "    -h, --help         print usage and example message")
	fmt.Fprintln(w, "    -x, --example      print details example")
	fmt.Fprintln(w, "    -t, --turn         total number of turn")
	fmt.Fprintln(w, "    -a, --accel        acceleration turn/sec*sec")
	fmt.Fprintln(w, "    -d, --decel        deceleration turn/sec*sec")
	fmt.Fprintln(w, "    -s, --speed        maximum speed turn/sec")
	fmt.Fprintln(w, "        --config       YAML options file")
	fmt.Fprintln(w, "        --planner      constant (default) or linear")
	fmt.Fprintln(w, "        --compare      constant planner step interval in ticks")
	fmt.Fprintln(w, "        --period       control loop period (default 2.17us)")
	fmt.Fprintln(w, "        --capacity     step events recorded before stopping")
	fmt.Fprintln(w, "        --pulse-width  step pulse width in ticks")
	fmt.Fprintln(w, "        --policy       fifo, rr or other")
	fmt.Fprintln(w, "        --priority     real-time priority")
	fmt.Fprintln(w, "        --output       parallel, gpio or memory")
	fmt.Fprintln(w, "        --gpio-pin     BCM pin for gpio output")
	fmt.Fprintln(w, "        --serial       serial console device")
	fmt.Fprintln(w, "        --baud         serial console baud rate")
	fmt.Fprintln(w, "        --resolution   jitter plot resolution")
	fmt.Fprintln(w, "        --log-level    debug, info, warn or error")
	fmt.Fprintln(w)
}

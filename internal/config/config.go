// Package config holds the run options of the stepper driver.
//
// Options start from Defaults, are overlaid by an optional YAML file and
// finally by command-line flags. Validate reports every bad field at once.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/randomizedcoder/rt-stepper/internal/controller"
	"github.com/randomizedcoder/rt-stepper/internal/pulse"
	"github.com/randomizedcoder/rt-stepper/internal/recorder"
	"github.com/randomizedcoder/rt-stepper/internal/rt"
)

// Output backends.
const (
	OutputParallel = "parallel"
	OutputGPIO     = "gpio"
	OutputMemory   = "memory"
)

// Planners.
const (
	PlannerConstant = "constant"
	PlannerLinear   = "linear"
)

var ErrInvalid = errors.New("config: invalid option")

// Options is everything a run needs to know.
type Options struct {
	// Motion, in turns, turns/s^2 and turns/s.
	Turn  float64 `yaml:"turn"`
	Accel float64 `yaml:"accel"`
	Decel float64 `yaml:"decel"`
	Speed float64 `yaml:"speed"`

	Planner string `yaml:"planner"`
	// Compare is the fixed step interval, in ticks, of the constant planner.
	Compare uint `yaml:"compare"`

	Period     time.Duration `yaml:"period"`
	Capacity   int           `yaml:"capacity"`
	PulseWidth uint          `yaml:"pulse_width"`

	Policy   string `yaml:"policy"`
	Priority int    `yaml:"priority"`

	Output  string `yaml:"output"`
	GPIOPin int    `yaml:"gpio_pin"`

	Serial string `yaml:"serial"`
	Baud   int    `yaml:"baud"`

	Resolution time.Duration `yaml:"resolution"`
	LogLevel   string        `yaml:"log_level"`
}

// Defaults returns the options of a plain run: a constant 100-tick step
// interval at the 2.17us period, recorded until the log is full.
func Defaults() Options {
	return Options{
		Turn:       2.0,
		Accel:      0.5,
		Decel:      0.5,
		Speed:      1.0,
		Planner:    PlannerConstant,
		Compare:    100,
		Period:     controller.DefaultPeriod,
		Capacity:   recorder.DefaultCapacity,
		PulseWidth: pulse.DefaultWidth,
		Policy:     rt.PolicyFIFO.String(),
		Priority:   rt.DefaultPriority,
		Output:     OutputParallel,
		GPIOPin:    17,
		Baud:       115200,
		Resolution: time.Millisecond,
		LogLevel:   zerolog.InfoLevel.String(),
	}
}

// Load overlays the YAML file at path onto o. Keys absent from the file
// keep their current values.
func Load(path string, o *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("config: yaml unmarshal %s: %w", path, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate checks every field and returns all problems combined.
func (o Options) Validate() error {
	var err error

	switch o.Planner {
	case PlannerConstant:
		if o.Compare == 0 || uint64(o.Compare) > math.MaxUint32 {
			err = multierr.Append(err, invalid("compare %d outside [1, 2^32)", o.Compare))
		}
	case PlannerLinear:
		if o.Turn == 0 {
			err = multierr.Append(err, invalid("turn must be non-zero"))
		}
		if o.Accel <= 0 || o.Decel <= 0 || o.Speed <= 0 {
			err = multierr.Append(err, invalid("accel, decel and speed must be positive"))
		}
	default:
		err = multierr.Append(err, invalid("unknown planner %q", o.Planner))
	}

	if o.Period <= 0 {
		err = multierr.Append(err, invalid("period %v must be positive", o.Period))
	}
	if o.Capacity < 1 {
		err = multierr.Append(err, invalid("capacity %d must be positive", o.Capacity))
	}
	if o.PulseWidth == 0 || uint64(o.PulseWidth) > math.MaxUint32 {
		err = multierr.Append(err, invalid("pulse width %d outside [1, 2^32)", o.PulseWidth))
	}

	if _, aerr := o.Attr(); aerr != nil {
		err = multierr.Append(err, invalid("%v", aerr))
	}

	switch o.Output {
	case OutputParallel, OutputMemory:
	case OutputGPIO:
		if o.GPIOPin < 0 {
			err = multierr.Append(err, invalid("gpio pin %d", o.GPIOPin))
		}
	default:
		err = multierr.Append(err, invalid("unknown output %q", o.Output))
	}

	if o.Serial != "" && o.Baud <= 0 {
		err = multierr.Append(err, invalid("baud %d must be positive", o.Baud))
	}
	if o.Resolution <= 0 {
		err = multierr.Append(err, invalid("resolution %v must be positive", o.Resolution))
	}
	if _, lerr := zerolog.ParseLevel(o.LogLevel); lerr != nil {
		err = multierr.Append(err, invalid("log level %q", o.LogLevel))
	}
	return err
}

// Attr builds the control thread attributes.
func (o Options) Attr() (rt.Attr, error) {
	policy, err := rt.ParsePolicy(o.Policy)
	if err != nil {
		return rt.Attr{}, err
	}
	a := rt.DefaultAttr()
	a.Policy = policy
	a.Priority = o.Priority
	if policy == rt.PolicyOther {
		a.Priority = 0
	}
	return a, a.Validate()
}

// Level returns the parsed log level, info if it does not parse.
func (o Options) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(o.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

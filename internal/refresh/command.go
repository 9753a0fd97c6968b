package refresh

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
)

type Action int

const (
	ActionNone Action = iota
	ActionRefresh
	ActionHelp
	ActionQuit
)

var ErrUnknownCommand = errors.New("unknown command")

const HelpText = `commands:
  mag <x>       minimum magnitude, 0 to 10
  limit <n>     number of events to load (50, 100, 250, 500 or any positive value)
  window <h>    only events from the last h hours, 0 for no window
  refresh       reload with the current controls
  help          show this message
  quit          exit`

// ParseCommand applies one line of terminal input to current. Control
// changes and "refresh" return ActionRefresh with the controls to load.
func ParseCommand(line string, current models.Controls) (models.Controls, Action, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return current, ActionNone, nil
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "refresh", "r":
		return current, ActionRefresh, nil
	case "help", "h", "?":
		return current, ActionHelp, nil
	case "quit", "q", "exit":
		return current, ActionQuit, nil
	}

	if len(args) != 1 {
		return current, ActionNone, fmt.Errorf("%s: expected exactly one value", cmd)
	}
	arg := args[0]

	switch cmd {
	case "mag":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || math.IsNaN(v) || v < models.MinMagnitudeFloor || v > models.MinMagnitudeCeiling {
			return current, ActionNone, fmt.Errorf("mag: %q is not a magnitude between %g and %g", arg, models.MinMagnitudeFloor, models.MinMagnitudeCeiling)
		}
		current.MinMagnitude = v
	case "limit":
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			return current, ActionNone, fmt.Errorf("limit: %q is not a positive number", arg)
		}
		current.Limit = v
	case "window":
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 {
			return current, ActionNone, fmt.Errorf("window: %q is not a number of hours", arg)
		}
		current.WindowHours = v
	default:
		return current, ActionNone, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	return current, ActionRefresh, nil
}

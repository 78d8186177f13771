package script

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
)

// ErrBadCommand is returned by Parse when a line of a script can't be understood
var ErrBadCommand error = errors.New("malformed script command")

type Operation uint32

const (
	OperationMalloc Operation = iota
	OperationFree
	OperationDefrag
	OperationDump
	OperationStats
	OperationValidate
)

var operationMapping = map[Operation]string{
	OperationMalloc:   "malloc",
	OperationFree:     "free",
	OperationDefrag:   "defrag",
	OperationDump:     "dump",
	OperationStats:    "stats",
	OperationValidate: "validate",
}

var operationsByName = map[string]Operation{
	"malloc":   OperationMalloc,
	"free":     OperationFree,
	"defrag":   OperationDefrag,
	"dump":     OperationDump,
	"stats":    OperationStats,
	"validate": OperationValidate,
}

func (o Operation) String() string {
	return operationMapping[o]
}

// takesArgument is true for operations that are followed by a single integer
func (o Operation) takesArgument() bool {
	return o == OperationMalloc || o == OperationFree
}

// Command is a single parsed line of a script
type Command struct {
	Operation Operation
	// Argument is the length for malloc and the address for free. It is 0 for other operations.
	Argument int
	// Line is the 1-based line of the script the command was read from
	Line int
}

func (c Command) String() string {
	if c.Operation.takesArgument() {
		return c.Operation.String() + " " + strconv.Itoa(c.Argument)
	}
	return c.Operation.String()
}

// Parse reads one command per line from r. Blank lines and lines starting with # are skipped, and
// operation names are not case sensitive.
func Parse(r io.Reader) ([]Command, error) {
	var commands []Command

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		operation, ok := operationsByName[strings.ToLower(fields[0])]
		if !ok {
			return nil, cerrors.Wrapf(ErrBadCommand, "line %d: unknown operation %q", lineNumber, fields[0])
		}

		command := Command{Operation: operation, Line: lineNumber}
		if !operation.takesArgument() {
			if len(fields) != 1 {
				return nil, cerrors.Wrapf(ErrBadCommand, "line %d: %s takes no arguments", lineNumber, operation)
			}

			commands = append(commands, command)
			continue
		}

		if len(fields) != 2 {
			return nil, cerrors.Wrapf(ErrBadCommand, "line %d: %s takes exactly one argument", lineNumber, operation)
		}

		argument, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, cerrors.Wrapf(ErrBadCommand, "line %d: %s argument %q is not an integer", lineNumber, operation, fields[1])
		}
		command.Argument = argument

		commands = append(commands, command)
	}

	if err := scanner.Err(); err != nil {
		return nil, cerrors.Wrap(err, "reading script")
	}

	return commands, nil
}

package machine

import (
	"errors"
	"strings"

	"trs80/pkg/basic"
	"trs80/pkg/program"
	"trs80/pkg/vfs"
)

// metaCommands are handled by the shell and never reach the statement
// engine.
var metaCommands = map[string]func(m *Machine, arg string){
	"RUN":    (*Machine).cmdRun,
	"LIST":   (*Machine).cmdList,
	"NEW":    (*Machine).cmdNew,
	"CLEAR":  (*Machine).cmdClear,
	"CONT":   (*Machine).cmdCont,
	"LOAD":   (*Machine).cmdLoad,
	"SAVE":   (*Machine).cmdSave,
	"CLS":    (*Machine).cmdCls,
	"DELETE": (*Machine).cmdDelete,
	"SYSTEM": (*Machine).cmdSystem,
}

// Boot clears the screen and shows the READY prompt.
func (m *Machine) Boot() {
	m.halt()
	m.Screen.Clear()
	m.prompt()
}

// command handles one line entered at the prompt.
func (m *Machine) command(line string) {
	m.Screen.Print("", true)
	line = strings.TrimSpace(line)
	m.log.Debug().Str("line", line).Msg("command")

	switch {
	case line == "":
	case line[0] >= '0' && line[0] <= '9':
		if _, _, ok := m.Listing.Enter(line); !ok {
			m.println("?SYNTAX ERROR")
		}
	default:
		word, arg := splitCommand(line)
		if fn, ok := metaCommands[word]; ok {
			fn(m, arg)
		} else {
			m.execDirect(line)
		}
	}

	if m.state == Idle || m.state == Paused {
		m.prompt()
	}
}

// splitCommand separates the leading keyword from its argument.
func splitCommand(line string) (word, arg string) {
	i := 0
	for i < len(line) && line[i] >= 'A' && line[i] <= 'Z' {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// execDirect executes a single statement typed without a line number.
func (m *Machine) execDirect(line string) {
	stmt, err := basic.ParseStatement(line)
	if err != nil {
		m.println("?" + headline(err))
		return
	}

	m.direct = true
	m.directJump = -1
	err = m.exec(stmt)
	m.direct = false

	if err != nil {
		if isSoft(err) {
			m.soft(err)
		}
		m.println("?" + headline(err))
		return
	}
	m.newlineIfNeeded()
	if m.directJump >= 0 {
		m.pc = m.directJump
		m.state = Running
	}
}

func (m *Machine) cmdRun(arg string) {
	var from *program.Key
	if arg != "" {
		k, ok := program.ParseKey(arg)
		if !ok {
			m.println("?SYNTAX ERROR")
			return
		}
		from = &k
	}
	if err := m.Start(from); err != nil {
		m.println("?UNDEFINED LINE " + arg)
	}
}

func (m *Machine) cmdList(arg string) {
	r, err := program.ParseRange(arg)
	if err != nil {
		m.println("?SYNTAX ERROR")
		return
	}
	lines, err := m.Listing.Select(r)
	if err != nil {
		m.println("NO SUCH LINE")
		return
	}
	for _, l := range lines {
		m.println(l.String())
	}
}

func (m *Machine) cmdNew(string) {
	m.halt()
	m.Listing.Clear()
	m.prog = nil
	m.cache = nil
	m.pc = 0
	m.resetRun()
	m.Screen.Clear()
}

func (m *Machine) cmdClear(string) {
	m.Vars.Clear()
	m.clearStacks()
	m.println("VARIABLES CLEARED")
}

func (m *Machine) cmdCont(string) {
	if err := m.Cont(); err != nil {
		m.println("?" + headline(err))
	}
}

func (m *Machine) cmdCls(string) {
	m.Screen.Clear()
}

func (m *Machine) cmdDelete(arg string) {
	if arg == "" {
		m.println("?SYNTAX ERROR")
		return
	}
	r, err := program.ParseRange(arg)
	if err != nil {
		m.println("?SYNTAX ERROR")
		return
	}
	n, err := m.Listing.DeleteRange(r)
	if err != nil {
		m.println("NO SUCH LINE")
		return
	}
	m.log.Info().Int("lines", n).Str("range", arg).Msg("deleted")
	m.println("DELETED")
}

func (m *Machine) cmdSystem(string) {
	m.println("SYSTEM COMMAND NOT IMPLEMENTED")
}

// cmdLoad reads a program from cassette storage, or from the host's file
// picker when no name is given.
func (m *Machine) cmdLoad(arg string) {
	var (
		name string
		data []byte
		err  error
	)
	if arg == "" {
		if m.picker == nil {
			m.println("?FILE NAME REQUIRED")
			return
		}
		name, data, err = m.picker.Open()
	} else {
		name, err = vfs.Normalize(arg, "BAS")
		if err == nil {
			data, err = m.Disk.Read(name)
		}
	}
	if err != nil {
		m.reportFileError(name, err)
		return
	}
	n := m.LoadSource(data)
	m.log.Info().Str("file", name).Int("lines", n).Msg("load")
	m.Screen.Clear()
}

// cmdSave writes the listing to cassette storage or through the file picker.
func (m *Machine) cmdSave(arg string) {
	text := m.Listing.String()
	var (
		name string
		err  error
	)
	if arg == "" {
		if m.picker == nil {
			m.println("?FILE NAME REQUIRED")
			return
		}
		name, err = m.picker.Save(text)
	} else {
		name, err = vfs.Normalize(arg, "BAS")
		if err == nil {
			err = m.Disk.Write(name, []byte(text))
		}
	}
	if err != nil {
		m.reportFileError(name, err)
		return
	}
	m.log.Info().Str("file", name).Int("lines", m.Listing.Len()).Msg("save")
	m.println("SAVED " + name)
}

func (m *Machine) reportFileError(name string, err error) {
	switch {
	case errors.Is(err, ErrCancelled):
		return
	case errors.Is(err, vfs.ErrFileNotFound):
		m.println("?FILE NOT FOUND")
	case errors.Is(err, vfs.ErrInvalidFilename):
		m.println("?BAD FILE NAME")
	case errors.Is(err, vfs.ErrQuotaExceeded):
		m.println("?DISK FULL")
	default:
		m.println("?" + headline(err))
	}
	m.log.Warn().Str("file", name).Err(err).Msg("file error")
}

package machine

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"trs80/pkg/basic"
	"trs80/pkg/devices"
)

// humanReadableState is the JSON part of a hibernation archive.
type humanReadableState struct {
	State      State                    `json:"state"`
	PC         int                      `json:"pc"`
	ForStack   []forFrame               `json:"for_stack"`
	GosubStack []int                    `json:"gosub_stack"`
	DataPool   []string                 `json:"data_pool"`
	DataPtr    int                      `json:"data_ptr"`
	Scalars    map[string]basic.Value   `json:"scalars"`
	Arrays     map[string][]basic.Value `json:"arrays"`
	CursorRow  int                      `json:"cursor_row"`
	CursorCol  int                      `json:"cursor_col"`
	Issues     []Issue                  `json:"issues"`
}

// Hibernate writes the machine to w as a zip archive holding the control
// state as JSON, the program text, the screen planes and each device's state.
func (m *Machine) Hibernate(w io.Writer) error {
	data, err := m.HibernateToBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// HibernateToBytes builds the hibernation archive in memory.
func (m *Machine) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	// AwaitingInput is stored as Paused on the INPUT statement so that
	// resuming re-executes it.
	st := m.state
	if st == AwaitingInput {
		st = Paused
	}
	state := humanReadableState{
		State:      st,
		PC:         m.pc,
		ForStack:   m.forStack,
		GosubStack: m.gosubStack,
		DataPool:   m.dataPool,
		DataPtr:    m.dataPtr,
		Scalars:    make(map[string]basic.Value),
		Arrays:     make(map[string][]basic.Value),
		Issues:     m.issues,
	}
	for _, name := range m.Vars.Names() {
		state.Scalars[name], _ = m.Vars.Get(name)
	}
	for _, name := range m.Vars.Arrays() {
		state.Arrays[name] = m.Vars.Array(name)
	}
	state.CursorRow, state.CursorCol = m.Screen.Cursor()

	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal machine_state: %w", err)
	}
	if err := writeZipEntry(zw, "machine_state.json", jsonData); err != nil {
		return nil, err
	}

	if err := writeZipEntry(zw, "program.bas", []byte(m.Listing.String())); err != nil {
		return nil, err
	}

	screen, err := m.Screen.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "screen.bin", screen); err != nil {
		return nil, err
	}

	for _, d := range m.statefulDevices() {
		if err := writeZipEntry(zw, "device_"+d.Type()+".json", d.SaveState()); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Resume restores a machine from an archive written by Hibernate. The
// program is re-exploded from the saved listing.
func (m *Machine) Resume(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "machine_state.json")
	if err != nil {
		return err
	}
	var state humanReadableState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal machine_state: %w", err)
	}

	src, err := readZipEntry(fileMap, "program.bas")
	if err != nil {
		return err
	}

	m.halt()
	m.LoadSource(src)
	m.cache = make([]basic.Stmt, m.prog.Len())

	m.Vars.Clear()
	for name, v := range state.Scalars {
		if err := m.Vars.Set(name, v); err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
	}
	for name, values := range state.Arrays {
		m.Vars.Restore(name, values)
	}

	m.forStack = state.ForStack
	m.gosubStack = state.GosubStack
	m.dataPool = state.DataPool
	m.dataPtr = state.DataPtr
	m.issues = state.Issues
	m.pc = min(max(state.PC, 0), m.prog.Len())

	if raw, err := readZipEntry(fileMap, "screen.bin"); err == nil {
		if err := m.Screen.UnmarshalBinary(raw); err != nil {
			return err
		}
	}
	m.Screen.SetCursor(state.CursorRow, state.CursorCol)

	for _, d := range m.statefulDevices() {
		raw, err := readZipEntry(fileMap, "device_"+d.Type()+".json")
		if err != nil {
			continue
		}
		if err := d.LoadState(raw); err != nil {
			return fmt.Errorf("load %s state: %w", d.Type(), err)
		}
	}

	if state.State == Running || state.State == Paused {
		m.state = Paused
	}
	m.log.Info().Str("line", m.CurrentLabel()).Msg("resumed")
	return nil
}

// HibernateToFile writes the hibernation archive to path.
func (m *Machine) HibernateToFile(path string) error {
	data, err := m.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResumeFromFile reads a hibernation archive from path.
func (m *Machine) ResumeFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.Resume(data)
}

func (m *Machine) statefulDevices() []devices.StatefulDevice {
	return []devices.StatefulDevice{m.Keyboard, m.Tape}
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

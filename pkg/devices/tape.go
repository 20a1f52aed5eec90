package devices

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	TapeDeviceType = "Tape"
	DefaultTape    = "DEFAULT.DAT"
)

var ErrTapeEmpty = errors.New("no more data on tape")

// RecordStore is the medium a Tape records on. vfs.Disk implements it.
type RecordStore interface {
	Write(name string, data []byte) error
	Append(name string, data []byte) error
	Read(name string) ([]byte, error)
}

// Tape is a sequential record log: one value per line, appended by PRINT#-1
// and read back in order by INPUT#-1.
type Tape struct {
	store     RecordStore
	name      string
	pos       int
	recording bool
}

func NewTape(store RecordStore, name string) *Tape {
	if name == "" {
		name = DefaultTape
	}
	return &Tape{store: store, name: name}
}

// Name is the file the tape is bound to.
func (t *Tape) Name() string { return t.name }

// Position is the number of records read since the last rewind.
func (t *Tape) Position() int { return t.pos }

// Select binds the tape to another file and rewinds it.
func (t *Tape) Select(name string) {
	if name == "" {
		name = DefaultTape
	}
	t.name = name
	t.Rewind()
}

// Rewind moves the read head to the first record. The next Write starts a
// fresh recording.
func (t *Tape) Rewind() {
	t.pos = 0
	t.recording = false
}

// Write appends one record. The first write after a rewind erases the tape.
func (t *Tape) Write(record string) error {
	record = strings.ReplaceAll(record, "\n", " ")
	if !t.recording {
		if err := t.store.Write(t.name, nil); err != nil {
			return err
		}
		t.recording = true
	}
	return t.store.Append(t.name, []byte(record+"\n"))
}

// Read returns the next unread record, or ErrTapeEmpty at the end of the tape
// or when the file does not exist.
func (t *Tape) Read() (string, error) {
	data, err := t.store.Read(t.name)
	if err != nil {
		return "", ErrTapeEmpty
	}
	records := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(data) == 0 || t.pos >= len(records) {
		return "", ErrTapeEmpty
	}
	rec := strings.TrimSpace(records[t.pos])
	t.pos++
	return rec, nil
}

func (t *Tape) Type() string {
	return TapeDeviceType
}

type tapeState struct {
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Recording bool   `json:"recording"`
}

func (t *Tape) SaveState() []byte {
	b, _ := json.Marshal(tapeState{Name: t.name, Position: t.pos, Recording: t.recording})
	return b
}

func (t *Tape) LoadState(data []byte) error {
	var s tapeState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.name, t.pos, t.recording = s.Name, s.Position, s.Recording
	return nil
}

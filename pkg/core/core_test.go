package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDraft(t *testing.T) {
	d := Draft{Title: "  ", Content: "\n"}
	assert.True(t, d.Empty())

	d = Draft{Title: " Plan ", Content: ""}
	assert.False(t, d.Empty())
	assert.Equal(t, Draft{Title: "Plan"}, d.Trimmed())
}

func TestDraft_Apply(t *testing.T) {
	base := Note{ID: 3, Title: "old", Content: "old", Created: 10, Modified: 20}

	n := Draft{Title: "", Content: " body "}.Apply(base)
	assert.Equal(t, Note{ID: 3, Title: DefaultTitle, Content: "body", Created: 10, Modified: 20}, n)

	n = Draft{Title: "New", Content: ""}.Apply(Note{})
	assert.True(t, n.IsNew())
	assert.Equal(t, "New", n.Title)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, int64(1_700_000_000_123), Millis(time.UnixMilli(1_700_000_000_123)))
}

func TestMedicalData_Clone(t *testing.T) {
	var nilData MedicalData
	assert.NotNil(t, nilData.Clone())

	d := MedicalData{"name": "Ana"}
	c := d.Clone()
	c["name"] = "changed"
	assert.Equal(t, "Ana", d["name"])

	assert.False(t, MedicalProfile{}.Saved())
	assert.True(t, MedicalProfile{Modified: 1}.Saved())
}

func TestErrors(t *testing.T) {
	cause := errors.New("disk I/O error")

	w := &WriteError{Op: "delete", ID: 7, Err: cause}
	assert.Equal(t, "failed to delete note 7: disk I/O error", w.Error())
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", w), cause)
	assert.Equal(t, "failed to clear notes: disk I/O error", (&WriteError{Op: "clear notes", Err: cause}).Error())

	r := &ReadError{Op: "load notes", Err: ErrClosed}
	assert.ErrorIs(t, r, ErrClosed)

	o := &OpenError{Path: "biji.db", Err: cause}
	assert.Contains(t, o.Error(), "biji.db")

	v := &ValidationError{Err: ErrEmptyNote}
	assert.True(t, IsValidation(fmt.Errorf("save: %w", v)))
	assert.False(t, IsValidation(w))
	assert.Equal(t, ErrEmptyNote.Error(), v.Error())
}

func TestEvent_String(t *testing.T) {
	e := Event{Type: EventModify, Path: "/tmp/biji.db"}
	assert.Equal(t, "MODIFY /tmp/biji.db", e.String())
}

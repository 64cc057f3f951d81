package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := NewSession("kpi.xlsx", SheetPrimary, NewTable(kpiHeaders, nil))
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "kpi.xlsx", sess.FileName)

	store.Save(sess)
	assert.Equal(t, 1, store.Count())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	store.Delete(sess.ID)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(20 * time.Millisecond)
	sess := NewSession("kpi.xlsx", SheetPrimary, NewTable(kpiHeaders, nil))
	store.Save(sess)

	time.Sleep(50 * time.Millisecond)
	_, err := store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	a := NewSession("a.xlsx", SheetPrimary, NewTable(kpiHeaders, [][]string{{"Q1", "1", "1", "1", "1"}}))
	b := NewSession("b.xlsx", SheetPrimary, NewTable(kpiHeaders, [][]string{{"Q1", "1", "1", "1", "1"}}))
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.Table.SetCell(0, "Lead (ist)", "99"))
	assert.Equal(t, "99", a.Table.Cell(0, "Lead (ist)"))
	assert.Equal(t, "1", b.Table.Cell(0, "Lead (ist)"))
}

package entitystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store[*UserAccount] {
	t.Helper()
	s, err := Open(t.TempDir(), "accounts", func() *UserAccount { return &UserAccount{} })
	require.NoError(t, err)
	return s
}

func TestInsertAssignsIDAndPersists(t *testing.T) {
	s := newTestStore(t)

	acc, err := NewUserAccount("a@example.com", "hunter2")
	require.NoError(t, err)

	id, err := s.Insert(acc)
	require.NoError(t, err)
	require.NotZero(t, id)
	require.Equal(t, id, acc.ID)
	require.Equal(t, 1, s.Count())

	got, err := s.GetByID(id)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", got.Email)
}

func TestGetByIDUnknownReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetByID(999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUnknownReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	acc, err := NewUserAccount("ghost@example.com", "x")
	require.NoError(t, err)
	acc.ID = 999
	require.ErrorIs(t, s.Update(acc), ErrNotFound)
}

func TestUpdatePersistsNewValue(t *testing.T) {
	s := newTestStore(t)
	acc, err := NewUserAccount("a@example.com", "hunter2")
	require.NoError(t, err)
	id, err := s.Insert(acc)
	require.NoError(t, err)

	acc.Email = "b@example.com"
	require.NoError(t, s.Update(acc))

	got, err := s.GetByID(id)
	require.NoError(t, err)
	require.Equal(t, "b@example.com", got.Email)
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := newTestStore(t)
	acc, err := NewUserAccount("a@example.com", "hunter2")
	require.NoError(t, err)
	id, err := s.Insert(acc)
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	require.Equal(t, 0, s.Count())
	_, err = s.GetByID(id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.Delete(999), ErrNotFound)
}

func TestSearchFiltersByPredicate(t *testing.T) {
	s := newTestStore(t)
	for _, email := range []string{"a@example.com", "b@example.com", "a2@example.com"} {
		acc, err := NewUserAccount(email, "x")
		require.NoError(t, err)
		_, err = s.Insert(acc)
		require.NoError(t, err)
	}

	matches := s.Search(func(a *UserAccount) bool {
		return len(a.Email) > 0 && a.Email[0] == 'a'
	})
	require.Len(t, matches, 2)
}

func TestReopenReplaysLogIncludingTombstones(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, "accounts", func() *UserAccount { return &UserAccount{} })
	require.NoError(t, err)

	kept, err := NewUserAccount("kept@example.com", "x")
	require.NoError(t, err)
	keptID, err := s.Insert(kept)
	require.NoError(t, err)

	deleted, err := NewUserAccount("deleted@example.com", "x")
	require.NoError(t, err)
	deletedID, err := s.Insert(deleted)
	require.NoError(t, err)
	require.NoError(t, s.Delete(deletedID))

	reopened, err := Open(dir, "accounts", func() *UserAccount { return &UserAccount{} })
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Count())

	got, err := reopened.GetByID(keptID)
	require.NoError(t, err)
	require.Equal(t, "kept@example.com", got.Email)

	_, err = reopened.GetByID(deletedID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	acc, err := NewUserAccount("a@example.com", "correct-horse")
	require.NoError(t, err)
	require.True(t, acc.VerifyPassword("correct-horse"))
	require.False(t, acc.VerifyPassword("wrong"))
}

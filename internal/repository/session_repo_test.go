package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/career_compass/internal/model"
	"github.com/qs3c/career_compass/internal/testutil"
)

func TestSessionRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSessionRepository(db)
	user := testutil.TestUser(t, db)

	session, err := repo.Create(context.Background(), user.ID)
	require.NoError(t, err)

	assert.NotZero(t, session.ID)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, model.DefaultSessionTitle, session.Title)
	assert.False(t, session.CreatedAt.IsZero())
	assert.False(t, session.UpdatedAt.IsZero())
}

func TestSessionRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSessionRepository(db)
	user := testutil.TestUser(t, db)
	created := testutil.TestSession(t, db, user.ID, testutil.WithTitle("Switch to data"))

	found, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, user.ID, found.UserID)
	assert.Equal(t, "Switch to data", found.Title)

	_, err = repo.GetByID(context.Background(), 99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepository_ListByUserID_OrderedByUpdatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSessionRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	base := time.Now().Add(-time.Hour)
	oldest := testutil.TestSession(t, db, user.ID, testutil.WithUpdatedAt(base))
	newest := testutil.TestSession(t, db, user.ID, testutil.WithUpdatedAt(base.Add(20*time.Minute)))
	middle := testutil.TestSession(t, db, user.ID, testutil.WithUpdatedAt(base.Add(10*time.Minute)))
	testutil.TestSession(t, db, other.ID)

	sessions, err := repo.ListByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, newest.ID, sessions[0].ID)
	assert.Equal(t, middle.ID, sessions[1].ID)
	assert.Equal(t, oldest.ID, sessions[2].ID)
}

func TestSessionRepository_ListByUserID_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSessionRepository(db)
	user := testutil.TestUser(t, db)

	sessions, err := repo.ListByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	count, err := repo.CountByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSessionRepository_ListInactiveBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSessionRepository(db)
	user := testutil.TestUser(t, db)

	now := time.Now()
	stale := testutil.TestSession(t, db, user.ID, testutil.WithUpdatedAt(now.Add(-48*time.Hour)))
	staler := testutil.TestSession(t, db, user.ID, testutil.WithUpdatedAt(now.Add(-72*time.Hour)))
	testutil.TestSession(t, db, user.ID, testutil.WithUpdatedAt(now.Add(-time.Hour)))

	sessions, err := repo.ListInactiveBefore(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, staler.ID, sessions[0].ID)
	assert.Equal(t, stale.ID, sessions[1].ID)
}

func TestSessionRepository_DeleteByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSessionRepository(db)
	user := testutil.TestUser(t, db)

	doomed := testutil.TestSession(t, db, user.ID)
	kept := testutil.TestSession(t, db, user.ID)
	testutil.TestMessage(t, db, doomed.ID, model.RoleUser, "bye")
	testutil.TestMessage(t, db, kept.ID, model.RoleUser, "stay")

	deleted, err := repo.DeleteByIDs(context.Background(), []int64{doomed.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(context.Background(), doomed.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var remaining []model.ChatMessage
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].SessionID)

	deleted, err = repo.DeleteByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

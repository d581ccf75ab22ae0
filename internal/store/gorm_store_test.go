package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/loopmobile/loop-og/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection to :memory: would see a different,
	// empty database, so pin the pool to one connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Question{}, &models.Vote{}, &models.Comment{}, &models.Answer{},
	))
	return db
}

func seedAmyQuestion(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "Amy"}).Error)
	require.NoError(t, db.Create(&models.Question{
		ID: "q1", Text: "How do I negotiate a raise?", CreatorID: "u1",
	}).Error)
	for _, voter := range []string{"u2", "u3", "u4"} {
		require.NoError(t, db.Create(&models.Vote{QuestionID: "q1", UserID: voter}).Error)
	}
}

func TestGormStore_QuestionCard(t *testing.T) {
	db := testDB(t)
	seedAmyQuestion(t, db)
	s := NewGormStore(db)

	card, err := s.QuestionCard(context.Background(), "q1")
	require.NoError(t, err)

	assert.Equal(t, "How do I negotiate a raise?", card.Question.Text)
	require.NotNil(t, card.Author)
	assert.Equal(t, "Amy", card.Author.Name)
	assert.Nil(t, card.Author.ProfilePhotoURL)
	assert.EqualValues(t, 3, card.UpvoteCount)
	assert.EqualValues(t, 0, card.CommentCount)
	assert.Nil(t, card.Answer)
	assert.Nil(t, card.Mentor)
}

func TestGormStore_NotFound(t *testing.T) {
	s := NewGormStore(testDB(t))

	_, err := s.QuestionCard(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_AnonymousSkipsAuthorLookup(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "Amy"}).Error)
	require.NoError(t, db.Create(&models.Question{
		ID: "q2", Text: "Is my salary low?", IsAnonymous: true, CreatorID: "u1",
	}).Error)
	s := NewGormStore(db)

	card, err := s.QuestionCard(context.Background(), "q2")
	require.NoError(t, err)
	assert.Nil(t, card.Author)
	assert.True(t, card.Question.IsAnonymous)
}

func TestGormStore_AnswerTieBreak(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "Amy"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "m1", Name: "Maya"}).Error)
	require.NoError(t, db.Create(&models.Question{ID: "q3", Text: "Interview prep?", CreatorID: "u1"}).Error)

	earlier := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)
	mentorID := "m1"
	require.NoError(t, db.Create(&models.Answer{
		QuestionID: "q3", RawText: "Second answer", CreatedAt: later,
	}).Error)
	require.NoError(t, db.Create(&models.Answer{
		QuestionID: "q3", MentorID: &mentorID, RawText: "First answer", CreatedAt: earlier,
	}).Error)

	s := NewGormStore(db)
	card, err := s.QuestionCard(context.Background(), "q3")
	require.NoError(t, err)

	require.NotNil(t, card.Answer)
	assert.Equal(t, "First answer", card.Answer.RawText, "earliest created_at wins")
	require.NotNil(t, card.Mentor)
	assert.Equal(t, "Maya", card.Mentor.Name)
}

func TestGormStore_AnswerWithMissingMentor(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "Amy"}).Error)
	require.NoError(t, db.Create(&models.Question{ID: "q4", Text: "Remote or office?", CreatorID: "u1"}).Error)
	gone := "deleted-mentor"
	require.NoError(t, db.Create(&models.Answer{
		QuestionID: "q4", MentorID: &gone, RawText: "Depends on the team.",
	}).Error)

	s := NewGormStore(db)
	card, err := s.QuestionCard(context.Background(), "q4")
	require.NoError(t, err)

	require.NotNil(t, card.Answer, "answer survives an unresolvable mentor")
	assert.Nil(t, card.Mentor)
}

func TestGormStore_SetPreviewURL(t *testing.T) {
	db := testDB(t)
	seedAmyQuestion(t, db)
	s := NewGormStore(db)

	url := "https://cdn.example.com/previews/q1.png"
	require.NoError(t, s.SetPreviewURL(context.Background(), "q1", url))

	var q models.Question
	require.NoError(t, db.First(&q, "id = ?", "q1").Error)
	require.NotNil(t, q.PreviewImageURL)
	assert.Equal(t, url, *q.PreviewImageURL)
}

func TestGormStore_SetPreviewURLUnknownQuestion(t *testing.T) {
	s := NewGormStore(testDB(t))
	err := s.SetPreviewURL(context.Background(), "missing", "https://cdn.example.com/x.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

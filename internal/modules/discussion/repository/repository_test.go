package repository_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/discussion/repository"
	"anoa.com/alienvault/internal/testutil"
	"anoa.com/alienvault/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMarkBestAnswerKeepsOnePerDiscussion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewDiscussionRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	d := testutil.CreateDiscussion(t, db, author, "How do rooms work?")
	other := testutil.CreateDiscussion(t, db, author, "Unrelated")
	a1 := testutil.CreateAnswer(t, db, d, author, "first")
	a2 := testutil.CreateAnswer(t, db, d, author, "second")
	foreign := testutil.CreateAnswer(t, db, other, author, "elsewhere")

	require.NoError(t, repo.MarkBestAnswer(ctx, d.ID, a1.ID))
	require.NoError(t, repo.MarkBestAnswer(ctx, other.ID, foreign.ID))
	require.NoError(t, repo.MarkBestAnswer(ctx, d.ID, a2.ID))

	var best []entity.Answer
	require.NoError(t, db.Where("discussion_id = ? AND is_best_answer = ?", d.ID, true).Find(&best).Error)
	require.Len(t, best, 1)
	assert.Equal(t, a2.ID, best[0].ID)

	// Other discussions are untouched.
	got, err := repo.FindAnswerByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBestAnswer)

	t.Run("answer from another discussion", func(t *testing.T) {
		err := repo.MarkBestAnswer(ctx, d.ID, foreign.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

		// The failed attempt rolled back and a2 is still best.
		got, err := repo.FindAnswerByID(ctx, a2.ID)
		require.NoError(t, err)
		assert.True(t, got.IsBestAnswer)
	})
}

func TestFindDetailOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewDiscussionRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	helper := testutil.CreateUser(t, db, "helper")
	d := testutil.CreateDiscussion(t, db, author, "Question")
	a1 := testutil.CreateAnswer(t, db, d, helper, "older")
	a2 := testutil.CreateAnswer(t, db, d, helper, "newer")
	r1 := testutil.CreateReply(t, db, a1, author, "reply one")
	r2 := testutil.CreateReply(t, db, a1, helper, "reply two")
	require.NoError(t, repo.MarkBestAnswer(ctx, d.ID, a2.ID))

	got, err := repo.FindDetail(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.Author.Username)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, a2.ID, got.Answers[0].ID)
	assert.Equal(t, a1.ID, got.Answers[1].ID)
	assert.Equal(t, "helper", got.Answers[1].Author.Username)
	require.Len(t, got.Answers[1].Replies, 2)
	assert.Equal(t, r1.ID, got.Answers[1].Replies[0].ID)
	assert.Equal(t, r2.ID, got.Answers[1].Replies[1].ID)
	assert.Equal(t, "author", got.Answers[1].Replies[0].Author.Username)

	_, err = repo.FindDetail(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindAllFiltersAndSorts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewDiscussionRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")

	goQ := &entity.Discussion{AuthorID: author.ID, Title: "Goroutine leaks", Content: "channels never closed", Category: "golang", Tags: []string{"go", "concurrency"}}
	dbQ := &entity.Discussion{AuthorID: author.ID, Title: "Index choice", Content: "btree or hash", Category: "database", Tags: []string{"postgres"}}
	meta := &entity.Discussion{AuthorID: author.ID, Title: "Welcome", Content: "say hi", Category: "general"}
	for _, d := range []*entity.Discussion{goQ, dbQ, meta} {
		require.NoError(t, repo.Create(ctx, d))
	}

	testutil.CreateAnswer(t, db, dbQ, voter, "use btree")
	testutil.CreateAnswer(t, db, dbQ, voter, "it depends")
	testutil.CreateAnswer(t, db, goQ, voter, "close them")
	critic := testutil.CreateUser(t, db, "critic")
	require.NoError(t, db.Create(&entity.Vote{TargetKind: entity.TargetDiscussion, TargetID: meta.ID, UserID: voter.ID, Direction: entity.VoteUp}).Error)
	require.NoError(t, db.Create(&entity.Vote{TargetKind: entity.TargetDiscussion, TargetID: goQ.ID, UserID: voter.ID, Direction: entity.VoteDown}).Error)
	require.NoError(t, db.Create(&entity.Vote{TargetKind: entity.TargetDiscussion, TargetID: goQ.ID, UserID: critic.ID, Direction: entity.VoteDown}).Error)

	ids := func(ds []entity.Discussion) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(ds))
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	t.Run("recent", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, repository.ListFilter{Sort: "recent"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []uuid.UUID{meta.ID, dbQ.ID, goQ.ID}, ids(got))
		assert.Equal(t, "author", got[0].Author.Username)
	})

	t.Run("popular", func(t *testing.T) {
		got, _, err := repo.FindAll(ctx, repository.ListFilter{Sort: "popular"}, 0, 10)
		require.NoError(t, err)
		// Ordered by how many votes were cast, whatever their direction.
		assert.Equal(t, []uuid.UUID{goQ.ID, meta.ID, dbQ.ID}, ids(got))
	})

	t.Run("answered and unanswered", func(t *testing.T) {
		got, _, err := repo.FindAll(ctx, repository.ListFilter{Sort: "answered"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{dbQ.ID, goQ.ID, meta.ID}, ids(got))

		got, _, err = repo.FindAll(ctx, repository.ListFilter{Sort: "unanswered"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{meta.ID, goQ.ID, dbQ.ID}, ids(got))
	})

	t.Run("category", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, repository.ListFilter{Category: "golang"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []uuid.UUID{goQ.ID}, ids(got))

		_, total, err = repo.FindAll(ctx, repository.ListFilter{Category: "all"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("tag", func(t *testing.T) {
		got, _, err := repo.FindAll(ctx, repository.ListFilter{Tag: "postgres"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{dbQ.ID}, ids(got))
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		got, _, err := repo.FindAll(ctx, repository.ListFilter{Search: "BTREE"}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{dbQ.ID}, ids(got))
	})

	t.Run("paging", func(t *testing.T) {
		got, total, err := repo.FindAll(ctx, repository.ListFilter{}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []uuid.UUID{goQ.ID}, ids(got))
	})

	t.Run("answer stats", func(t *testing.T) {
		stats, err := repo.AnswerStats(ctx, []uuid.UUID{goQ.ID, dbQ.ID, meta.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats[dbQ.ID].Count)
		assert.Equal(t, int64(1), stats[goQ.ID].Count)
		assert.Zero(t, stats[meta.ID].Count)
		assert.False(t, stats[dbQ.ID].HasBest)
	})
}

func TestResolveDiscussionID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewDiscussionRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user")
	d := testutil.CreateDiscussion(t, db, user, "Question")
	a := testutil.CreateAnswer(t, db, d, user, "answer")
	r := testutil.CreateReply(t, db, a, user, "reply")

	for _, target := range []entity.VoteTarget{
		{Kind: entity.TargetDiscussion, ID: d.ID},
		{Kind: entity.TargetAnswer, ID: a.ID},
		{Kind: entity.TargetReply, ID: r.ID},
	} {
		got, err := repo.ResolveDiscussionID(ctx, target)
		require.NoError(t, err, target.Kind)
		assert.Equal(t, d.ID, got, target.Kind)
	}

	_, err := repo.ResolveDiscussionID(ctx, entity.VoteTarget{Kind: entity.TargetReply, ID: uuid.New()})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.ResolveDiscussionID(ctx, entity.VoteTarget{Kind: "comment", ID: d.ID})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestAddViews(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewDiscussionRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user")
	d := testutil.CreateDiscussion(t, db, user, "Question")

	require.NoError(t, repo.AddViews(ctx, d.ID, 3))
	require.NoError(t, repo.AddViews(ctx, d.ID, 2))

	got, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Views)
}

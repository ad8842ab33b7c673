package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/discussion/dto"
	"anoa.com/alienvault/internal/modules/discussion/repository"
	"anoa.com/alienvault/internal/modules/discussion/service"
	notifRepo "anoa.com/alienvault/internal/modules/notification/repository"
	notifService "anoa.com/alienvault/internal/modules/notification/service"
	userRepo "anoa.com/alienvault/internal/modules/user/repository"
	voteRepo "anoa.com/alienvault/internal/modules/vote/repository"
	"anoa.com/alienvault/internal/realtime"
	"anoa.com/alienvault/internal/testutil"
	"anoa.com/alienvault/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	view "anoa.com/alienvault/internal/modules/view/service"
)

type published struct {
	event string
	room  uuid.UUID
	ref   uuid.UUID
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) add(p published) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *recorder) PublishNewAnswer(discussionID uuid.UUID, _ any) {
	r.add(published{event: realtime.EventNewAnswer, room: discussionID})
}

func (r *recorder) PublishNewReply(discussionID, answerID uuid.UUID, _ any) {
	r.add(published{event: realtime.EventNewReply, room: discussionID, ref: answerID})
}

func (r *recorder) PublishBestAnswerMarked(discussionID, answerID uuid.UUID) {
	r.add(published{event: realtime.EventBestAnswerMarked, room: discussionID, ref: answerID})
}

func (r *recorder) PublishVoteCountChanged(discussionID, targetID uuid.UUID, _ string, _ realtime.VoteCounts) {
	r.add(published{event: realtime.EventVoteCountUpdated, room: discussionID, ref: targetID})
}

func (r *recorder) PublishNotification(userID uuid.UUID, _ any) {
	r.add(published{event: realtime.EventNewNotification, room: userID})
}

func (r *recorder) of(event string) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db    *gorm.DB
	svc   service.DiscussionService
	votes voteRepo.VoteRepository
	pub   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	pub := &recorder{}
	discussions := repository.NewDiscussionRepository(db)
	votes := voteRepo.NewVoteRepository(db)

	svc := service.NewDiscussionService(service.Deps{
		Discussions:   discussions,
		Users:         userRepo.NewUserRepository(db),
		Votes:         votes,
		Notifications: notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), pub),
		Publisher:     pub,
		Views:         view.NewViewService(nil, discussions),
	})
	return &fixture{db: db, svc: svc, votes: votes, pub: pub}
}

func (f *fixture) notificationsFor(t *testing.T, userID uuid.UUID) []entity.Notification {
	t.Helper()
	var out []entity.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error)
	return out
}

func TestAddAnswerNotifiesAuthorAndMentionedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	carol := testutil.CreateUser(t, f.db, "carol")
	d := testutil.CreateDiscussion(t, f.db, alice, "Channels or mutexes?")

	answer, err := f.svc.AddAnswer(ctx, bob.ID, d.ID, dto.CreateAnswerRequest{
		Content: "@carol knows this. cc @ghost and me @bob, again @carol",
	})
	require.NoError(t, err)
	assert.Equal(t, d.ID, answer.DiscussionID)

	aliceNotes := f.notificationsFor(t, alice.ID)
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, entity.NotificationNewAnswer, aliceNotes[0].Type)
	assert.Equal(t, d.ID, aliceNotes[0].RelatedID)
	assert.Equal(t, "discussion", aliceNotes[0].RelatedKind)
	assert.Equal(t, "bob", aliceNotes[0].FromUsername)
	require.NotNil(t, aliceNotes[0].FromUserID)
	assert.Equal(t, bob.ID, *aliceNotes[0].FromUserID)

	carolNotes := f.notificationsFor(t, carol.ID)
	require.Len(t, carolNotes, 1, "a repeated mention notifies once")
	assert.Equal(t, entity.NotificationMention, carolNotes[0].Type)
	assert.Equal(t, answer.ID, carolNotes[0].RelatedID)
	assert.Equal(t, "answer", carolNotes[0].RelatedKind)

	assert.Empty(t, f.notificationsFor(t, bob.ID), "self mention is skipped")

	newAnswers := f.pub.of(realtime.EventNewAnswer)
	require.Len(t, newAnswers, 1)
	assert.Equal(t, d.ID, newAnswers[0].room)
	assert.Len(t, f.pub.of(realtime.EventNewNotification), 2)
}

func TestAddAnswerOnOwnDiscussionRaisesNothing(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice")
	d := testutil.CreateDiscussion(t, f.db, alice, "Solved it myself")

	_, err := f.svc.AddAnswer(context.Background(), alice.ID, d.ID, dto.CreateAnswerRequest{Content: "note to self @alice"})
	require.NoError(t, err)

	assert.Empty(t, f.notificationsFor(t, alice.ID))
	assert.Len(t, f.pub.of(realtime.EventNewAnswer), 1)
}

func TestAddAnswerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	d := testutil.CreateDiscussion(t, f.db, alice, "Question")

	_, err := f.svc.AddAnswer(ctx, alice.ID, d.ID, dto.CreateAnswerRequest{Content: "   "})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	_, err = f.svc.AddAnswer(ctx, alice.ID, uuid.New(), dto.CreateAnswerRequest{Content: "hello"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var count int64
	require.NoError(t, f.db.Model(&entity.Answer{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.pub.of(realtime.EventNewAnswer))
}

func TestAddReplyNotifiesAnswerAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	carol := testutil.CreateUser(t, f.db, "carol")
	d := testutil.CreateDiscussion(t, f.db, alice, "Question")
	a := testutil.CreateAnswer(t, f.db, d, bob, "an answer")

	reply, err := f.svc.AddReply(ctx, carol.ID, a.ID, dto.CreateReplyRequest{Content: "agreed, @alice take a look"})
	require.NoError(t, err)

	bobNotes := f.notificationsFor(t, bob.ID)
	require.Len(t, bobNotes, 1)
	assert.Equal(t, entity.NotificationReply, bobNotes[0].Type)
	assert.Equal(t, reply.ID, bobNotes[0].RelatedID)

	aliceNotes := f.notificationsFor(t, alice.ID)
	require.Len(t, aliceNotes, 1)
	assert.Equal(t, entity.NotificationMention, aliceNotes[0].Type)
	assert.Equal(t, "reply", aliceNotes[0].RelatedKind)

	replies := f.pub.of(realtime.EventNewReply)
	require.Len(t, replies, 1)
	assert.Equal(t, published{event: realtime.EventNewReply, room: d.ID, ref: a.ID}, replies[0])

	_, err = f.svc.AddReply(ctx, carol.ID, uuid.New(), dto.CreateReplyRequest{Content: "hello"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestMarkBestAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	d := testutil.CreateDiscussion(t, f.db, alice, "Question")
	first := testutil.CreateAnswer(t, f.db, d, bob, "first")
	second := testutil.CreateAnswer(t, f.db, d, alice, "second")

	t.Run("only the discussion author", func(t *testing.T) {
		err := f.svc.MarkBestAnswer(ctx, bob.ID, first.ID)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
		assert.Empty(t, f.pub.of(realtime.EventBestAnswerMarked))
	})

	t.Run("unknown answer", func(t *testing.T) {
		err := f.svc.MarkBestAnswer(ctx, alice.ID, uuid.New())
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})

	t.Run("marks and notifies", func(t *testing.T) {
		require.NoError(t, f.svc.MarkBestAnswer(ctx, alice.ID, first.ID))

		marked := f.pub.of(realtime.EventBestAnswerMarked)
		require.Len(t, marked, 1)
		assert.Equal(t, first.ID, marked[0].ref)

		bobNotes := f.notificationsFor(t, bob.ID)
		require.Len(t, bobNotes, 1)
		assert.Equal(t, entity.NotificationBestAnswer, bobNotes[0].Type)
	})

	t.Run("re-marking is a no-op", func(t *testing.T) {
		require.NoError(t, f.svc.MarkBestAnswer(ctx, alice.ID, first.ID))
		assert.Len(t, f.pub.of(realtime.EventBestAnswerMarked), 1)
		assert.Len(t, f.notificationsFor(t, bob.ID), 1)
	})

	t.Run("moving the flag to the author's own answer", func(t *testing.T) {
		require.NoError(t, f.svc.MarkBestAnswer(ctx, alice.ID, second.ID))

		var best []entity.Answer
		require.NoError(t, f.db.Where("discussion_id = ? AND is_best_answer = ?", d.ID, true).Find(&best).Error)
		require.Len(t, best, 1)
		assert.Equal(t, second.ID, best[0].ID)

		assert.Empty(t, f.notificationsFor(t, alice.ID))
		assert.Len(t, f.pub.of(realtime.EventBestAnswerMarked), 2)
	})
}

func TestGetDiscussionDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	d := testutil.CreateDiscussion(t, f.db, alice, "Question")
	older := testutil.CreateAnswer(t, f.db, d, bob, "older")
	newer := testutil.CreateAnswer(t, f.db, d, bob, "newer")
	testutil.CreateReply(t, f.db, older, alice, "thanks")
	require.NoError(t, f.svc.MarkBestAnswer(ctx, alice.ID, newer.ID))

	_, err := f.votes.Cast(ctx, entity.VoteTarget{Kind: entity.TargetAnswer, ID: older.ID}, alice.ID, entity.VoteUp)
	require.NoError(t, err)
	_, err = f.votes.Cast(ctx, entity.VoteTarget{Kind: entity.TargetDiscussion, ID: d.ID}, bob.ID, entity.VoteDown)
	require.NoError(t, err)

	detail, err := f.svc.GetDiscussion(ctx, d.ID, alice.ID, alice.ID.String())
	require.NoError(t, err)

	assert.Equal(t, int64(2), detail.Discussion.AnswerCount)
	assert.True(t, detail.Discussion.HasBestAnswer)
	assert.Equal(t, int64(1), detail.Discussion.VoteCount)
	assert.Equal(t, int64(1), detail.Discussion.Downvotes)
	assert.Nil(t, detail.Discussion.UserVote)

	require.Len(t, detail.Answers, 2)
	assert.Equal(t, newer.ID, detail.Answers[0].ID, "best answer first")
	assert.Equal(t, older.ID, detail.Answers[1].ID)
	assert.Equal(t, int64(1), detail.Answers[1].Upvotes)
	require.NotNil(t, detail.Answers[1].UserVote)
	assert.Equal(t, "up", *detail.Answers[1].UserVote)
	assert.Equal(t, 1, detail.Answers[1].ReplyCount)
	assert.Equal(t, "alice", detail.Answers[1].Replies[0].Author.Username)

	// Without Redis the view lands in the database immediately.
	var stored entity.Discussion
	require.NoError(t, f.db.First(&stored, "id = ?", d.ID).Error)
	assert.Equal(t, 1, stored.Views)

	_, err = f.svc.GetDiscussion(ctx, uuid.New(), uuid.Nil, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCreateAndListDiscussions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")

	_, err := f.svc.CreateDiscussion(ctx, alice.ID, dto.CreateDiscussionRequest{Title: "t", Content: " ", Category: "general"})
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	created, err := f.svc.CreateDiscussion(ctx, alice.ID, dto.CreateDiscussionRequest{
		Title:    "Realtime rooms",
		Content:  "How are rooms named?",
		Category: "backend",
		Tags:     []string{"WebSocket", "websocket", " redis "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"websocket", "redis"}, []string(created.Tags))

	_, err = f.svc.CreateDiscussion(ctx, uuid.New(), dto.CreateDiscussionRequest{Title: "t", Content: "c", Category: "general"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	page, err := f.svc.GetDiscussions(ctx, uuid.Nil, dto.DiscussionFilter{Category: "backend", Tag: "redis"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)
	assert.Equal(t, "alice", page.Data[0].Author.Username)
	assert.Equal(t, int64(1), page.Meta.TotalItems)
	assert.Equal(t, 20, page.Meta.Limit)
	assert.Equal(t, []string{}, page.Data[0].Images)
}

package service

import (
	"context"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/discussion/dto"
	discussionRepo "anoa.com/alienvault/internal/modules/discussion/repository"
	voteRepo "anoa.com/alienvault/internal/modules/vote/repository"
	commonDto "anoa.com/alienvault/pkg/dto"
	"github.com/google/uuid"
)

func authorResponse(u entity.User) commonDto.AuthorResponse {
	if u.Username == "" {
		return commonDto.AuthorResponse{ID: u.ID, Username: "Unknown"}
	}
	return commonDto.AuthorResponse{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

func voteSummary(tally voteRepo.Tally, direction entity.VoteDirection) dto.VoteSummary {
	summary := dto.VoteSummary{
		VoteCount: tally.Total,
		Upvotes:   tally.Up,
		Downvotes: tally.Down,
	}
	if direction != "" {
		d := string(direction)
		summary.UserVote = &d
	}
	return summary
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func buildReplyResponse(reply entity.Reply, tallies map[uuid.UUID]voteRepo.Tally, userVotes map[uuid.UUID]entity.VoteDirection) dto.ReplyResponse {
	return dto.ReplyResponse{
		ID:          reply.ID,
		AnswerID:    reply.AnswerID,
		Content:     reply.Content,
		Images:      stringsOrEmpty(reply.Images),
		Author:      authorResponse(reply.Author),
		VoteSummary: voteSummary(tallies[reply.ID], userVotes[reply.ID]),
		CreatedAt:   reply.CreatedAt,
		UpdatedAt:   reply.UpdatedAt,
	}
}

// voteMaps groups tallies and the viewer's votes per target kind.
type voteMaps struct {
	tallies   map[uuid.UUID]voteRepo.Tally
	userVotes map[uuid.UUID]entity.VoteDirection
}

func buildAnswerResponse(answer entity.Answer, answerVotes, replyVotes *voteMaps) dto.AnswerResponse {
	if answerVotes == nil {
		answerVotes = &voteMaps{}
	}
	if replyVotes == nil {
		replyVotes = &voteMaps{}
	}

	replies := make([]dto.ReplyResponse, 0, len(answer.Replies))
	for _, reply := range answer.Replies {
		replies = append(replies, buildReplyResponse(reply, replyVotes.tallies, replyVotes.userVotes))
	}

	return dto.AnswerResponse{
		ID:           answer.ID,
		DiscussionID: answer.DiscussionID,
		Content:      answer.Content,
		Images:       stringsOrEmpty(answer.Images),
		IsBestAnswer: answer.IsBestAnswer,
		Author:       authorResponse(answer.Author),
		ReplyCount:   len(answer.Replies),
		VoteSummary:  voteSummary(answerVotes.tallies[answer.ID], answerVotes.userVotes[answer.ID]),
		Replies:      replies,
		CreatedAt:    answer.CreatedAt,
		UpdatedAt:    answer.UpdatedAt,
	}
}

func buildDiscussionResponse(d entity.Discussion, stat discussionRepo.AnswerStat, tally voteRepo.Tally, direction entity.VoteDirection) dto.DiscussionResponse {
	return dto.DiscussionResponse{
		ID:            d.ID,
		Title:         d.Title,
		Content:       d.Content,
		Category:      d.Category,
		Tags:          stringsOrEmpty(d.Tags),
		Images:        stringsOrEmpty(d.Images),
		Views:         d.Views,
		Author:        authorResponse(d.Author),
		AnswerCount:   stat.Count,
		HasBestAnswer: stat.HasBest,
		VoteSummary:   voteSummary(tally, direction),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (s *discussionService) loadVotes(ctx context.Context, kind entity.TargetKind, ids []uuid.UUID, viewerID uuid.UUID) (*voteMaps, error) {
	tallies, err := s.voteRepo.Tallies(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	userVotes, err := s.voteRepo.UserVotes(ctx, kind, ids, viewerID)
	if err != nil {
		return nil, err
	}
	return &voteMaps{tallies: tallies, userVotes: userVotes}, nil
}

func (s *discussionService) buildDiscussionResponses(ctx context.Context, discussions []entity.Discussion, viewerID uuid.UUID) ([]dto.DiscussionResponse, error) {
	out := make([]dto.DiscussionResponse, 0, len(discussions))
	if len(discussions) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(discussions))
	for _, d := range discussions {
		ids = append(ids, d.ID)
	}

	stats, err := s.repo.AnswerStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	votes, err := s.loadVotes(ctx, entity.TargetDiscussion, ids, viewerID)
	if err != nil {
		return nil, err
	}

	for _, d := range discussions {
		out = append(out, buildDiscussionResponse(d, stats[d.ID], votes.tallies[d.ID], votes.userVotes[d.ID]))
	}
	return out, nil
}

func (s *discussionService) buildDetail(ctx context.Context, d *entity.Discussion, viewerID uuid.UUID) (*dto.DiscussionDetailResponse, error) {
	answerIDs := make([]uuid.UUID, 0, len(d.Answers))
	var replyIDs []uuid.UUID
	hasBest := false
	for _, a := range d.Answers {
		answerIDs = append(answerIDs, a.ID)
		hasBest = hasBest || a.IsBestAnswer
		for _, r := range a.Replies {
			replyIDs = append(replyIDs, r.ID)
		}
	}

	discussionVotes, err := s.loadVotes(ctx, entity.TargetDiscussion, []uuid.UUID{d.ID}, viewerID)
	if err != nil {
		return nil, err
	}
	answerVotes, err := s.loadVotes(ctx, entity.TargetAnswer, answerIDs, viewerID)
	if err != nil {
		return nil, err
	}
	replyVotes, err := s.loadVotes(ctx, entity.TargetReply, replyIDs, viewerID)
	if err != nil {
		return nil, err
	}

	answers := make([]dto.AnswerResponse, 0, len(d.Answers))
	for _, a := range d.Answers {
		answers = append(answers, buildAnswerResponse(a, answerVotes, replyVotes))
	}

	stat := discussionRepo.AnswerStat{Count: int64(len(d.Answers)), HasBest: hasBest}
	return &dto.DiscussionDetailResponse{
		Discussion: buildDiscussionResponse(*d, stat, discussionVotes.tallies[d.ID], discussionVotes.userVotes[d.ID]),
		Answers:    answers,
	}, nil
}

package handler

import (
	"net/http"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/internal/modules/vote/dto"
	voteRepo "anoa.com/alienvault/internal/modules/vote/repository"
	vote "anoa.com/alienvault/internal/modules/vote/service"
	"anoa.com/alienvault/pkg/response"
	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	service vote.VoteService
}

func NewVoteHandler(service vote.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) VoteDiscussion(c *gin.Context) {
	h.cast(c, entity.TargetDiscussion)
}

func (h *VoteHandler) VoteAnswer(c *gin.Context) {
	h.cast(c, entity.TargetAnswer)
}

func (h *VoteHandler) VoteReply(c *gin.Context) {
	h.cast(c, entity.TargetReply)
}

func (h *VoteHandler) cast(c *gin.Context, kind entity.TargetKind) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	targetID, ok := response.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.CastVote(c.Request.Context(), userID, entity.VoteTarget{Kind: kind, ID: targetID}, entity.VoteDirection(req.VoteType))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var userVote *string
	if result.UserVote != nil {
		v := string(*result.UserVote)
		userVote = &v
	}

	c.JSON(http.StatusOK, dto.VoteResponse{
		Message:   actionMessage(result.Action),
		Action:    string(result.Action),
		VoteCount: result.Tally.Total,
		Upvotes:   result.Tally.Up,
		Downvotes: result.Tally.Down,
		UserVote:  userVote,
	})
}

func actionMessage(action voteRepo.Action) string {
	switch action {
	case voteRepo.ActionAdded:
		return "Vote recorded"
	case voteRepo.ActionRemoved:
		return "Vote removed"
	case voteRepo.ActionFlipped:
		return "Vote changed"
	default:
		return "Vote processed"
	}
}

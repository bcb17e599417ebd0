package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	avatarUC "github.com/nhattran/cardfolio/internal/application/usecase/avatar"
	cardUC "github.com/nhattran/cardfolio/internal/application/usecase/card"
	"github.com/nhattran/cardfolio/internal/domain/card"
	"github.com/nhattran/cardfolio/pkg/apperror"
)

type CardHandler struct {
	getCardUC      *cardUC.GetCardUseCase
	updateCardUC   *cardUC.UpdateCardUseCase
	listOwnCardsUC *cardUC.ListOwnCardsUseCase
	uploadAvatarUC *avatarUC.UploadAvatarUseCase
}

func NewCardHandler(
	getUC *cardUC.GetCardUseCase,
	updateUC *cardUC.UpdateCardUseCase,
	listUC *cardUC.ListOwnCardsUseCase,
	uploadUC *avatarUC.UploadAvatarUseCase,
) *CardHandler {
	return &CardHandler{
		getCardUC:      getUC,
		updateCardUC:   updateUC,
		listOwnCardsUC: listUC,
		uploadAvatarUC: uploadUC,
	}
}

// GetCard serves the viewer-aware projection of a card by record id. The
// viewer id comes from the optional bearer token; anonymous is fine.
func (h *CardHandler) GetCard(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid card ID", err))
		return
	}

	viewerID := card.AnonymousViewer
	if ownerID, ok := GetOwnerIDFromGinContext(c); ok {
		viewerID = ownerID
	}

	input := cardUC.GetCardInput{
		Identifier: cardID,
		Mode:       cardUC.ByRecordID,
		ViewerID:   viewerID,
	}
	output, err := h.getCardUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToCardProjectionDTO(output.Projection))
}

// GetPrimaryCard resolves an owner id to that owner's primary card.
func (h *CardHandler) GetPrimaryCard(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid owner ID", err))
		return
	}

	viewerID := card.AnonymousViewer
	if authedID, ok := GetOwnerIDFromGinContext(c); ok {
		viewerID = authedID
	}

	input := cardUC.GetCardInput{
		Identifier: ownerID,
		Mode:       cardUC.ByOwnerPrimary,
		ViewerID:   viewerID,
	}
	output, err := h.getCardUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToCardProjectionDTO(output.Projection))
}

func (h *CardHandler) ListOwnCards(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	output, err := h.listOwnCardsUC.Execute(c.Request.Context(), cardUC.ListOwnCardsInput{OwnerID: ownerID})
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]CardDTO, len(output.Cards))
	for i, cc := range output.Cards {
		dtos[i] = ToCardDTO(cc)
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	callerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid card ID", err))
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for card update", err))
		return
	}

	input := cardUC.UpdateCardInput{
		CallerID: callerID,
		CardID:   cardID,
		Updates:  req.Updates,
	}
	output, err := h.updateCardUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToCardDTO(output.Card))
}

// UploadAvatar accepts a multipart image for the target owner's primary
// card. Auth on this route is optional at the middleware so the use case can
// run its fixed validation order; it rejects anonymous callers itself.
func (h *CardHandler) UploadAvatar(c *gin.Context) {
	callerID := card.AnonymousViewer
	if authedID, ok := GetOwnerIDFromGinContext(c); ok {
		callerID = authedID
	}

	targetOwnerID := uuid.Nil
	if raw := c.PostForm("owner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("invalid owner_id", err))
			return
		}
		targetOwnerID = parsed
	}

	input := avatarUC.UploadAvatarInput{
		CallerID:      callerID,
		TargetOwnerID: targetOwnerID,
	}

	fileHeader, err := c.FormFile("file")
	if err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			c.Error(apperror.NewInternal("failed to open uploaded file", openErr))
			return
		}
		defer file.Close()

		input.File = file
		input.ContentType = fileHeader.Header.Get("Content-Type")
		input.SizeBytes = fileHeader.Size
	}

	output, err := h.uploadAvatarUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": output.AvatarURL})
}

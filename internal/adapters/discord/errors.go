package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/viralforge/campaign-bot/internal/domain"
)

// mapRESTError folds Discord API failures into domain sentinels.
func mapRESTError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s: %v", domain.ErrPermission, operation, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", domain.ErrNotFound, operation, err)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func replyForError(command string, err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPlatform):
		arg := "<username>"
		if command == cmdSubmitVideo {
			arg = "<video_url>"
		}
		return fmt.Sprintf("❌ Invalid platform. Use `/%s tiktok %s` or `/%s youtube %s`.", command, arg, command, arg)
	case errors.Is(err, domain.ErrNoPendingRequest):
		return "❌ You don't have a pending verification request. Start with `/verify`."
	case errors.Is(err, domain.ErrCodeNotFound):
		return "❌ Verification code not found in your bio. Please add it and try again."
	case errors.Is(err, domain.ErrExternalFetch):
		return "⚠️ Couldn't read your profile right now. Please try again in a moment."
	case errors.Is(err, domain.ErrNoSubmission):
		return "❌ You haven't submitted a video yet. Use `/submitvideo` first."
	case errors.Is(err, domain.ErrDuplicateTicket):
		return "⚠️ You already have a payout request open."
	case errors.Is(err, domain.ErrChannelCreation) && errors.Is(err, domain.ErrPermission):
		return "❌ Bot lacks permission to create channels."
	case errors.Is(err, domain.ErrChannelCreation):
		return "❌ An error occurred while creating your payout ticket."
	case errors.Is(err, domain.ErrForbidden):
		return "❌ You do not have permission to use this command."
	case errors.Is(err, domain.ErrRateLimited):
		return "⏳ You're doing that too often. Please wait a minute and try again."
	case errors.Is(err, domain.ErrInvalidInput):
		return "❌ " + err.Error()
	default:
		return "❌ Something went wrong. Please try again later."
	}
}

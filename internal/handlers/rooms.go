package handlers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mossy-p/rendezvous/internal/models"
	"github.com/mossy-p/rendezvous/internal/signaling"
	"github.com/mossy-p/rendezvous/internal/store"
)

const (
	roomCodeLength = 6
	codeChars      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no ambiguous chars
)

// CreateRoom registers a new rendezvous point and hands back its id
// and shareable code (requires a host token). Rooms hold at most two
// participants; there is no size to configure.
func CreateRoom(rooms *store.Rooms) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, exists := c.Get("host_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		room := models.RoomMetadata{
			ID:        uuid.New().String(),
			Code:      generateRoomCode(),
			CreatorID: hostID.(string),
			CreatedAt: time.Now(),
		}

		if err := rooms.Save(c.Request.Context(), room); err != nil {
			log.Error().Err(err).Msg("failed to store room metadata")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
			return
		}

		log.Info().Str("room", room.ID).Str("code", room.Code).
			Str("host", room.CreatorID).Msg("room created")

		c.JSON(http.StatusCreated, models.CreateRoomResponse{
			RoomID: room.ID,
			Code:   room.Code,
		})
	}
}

// GetRoom returns room metadata by id or shareable code (public),
// including the live member count from the hub.
func GetRoom(rooms *store.Rooms, hub *signaling.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := resolveRoomID(c, rooms, c.Param("roomId"))
		if err != nil {
			return
		}

		room, err := rooms.Get(c.Request.Context(), roomID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch room metadata")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch room"})
			return
		}

		room.MemberCount = hub.MemberCount(room.ID)
		c.JSON(http.StatusOK, room)
	}
}

// DeleteRoom removes a room's metadata (requires a host token; creator
// only). Live members are unaffected: their session ends through the
// hub's own lifecycle, not through the management API.
func DeleteRoom(rooms *store.Rooms) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, exists := c.Get("host_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		roomID := c.Param("roomId")
		room, err := rooms.Get(c.Request.Context(), roomID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch room metadata")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch room"})
			return
		}

		if room.CreatorID != hostID.(string) {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the room creator can delete the room"})
			return
		}

		if err := rooms.Delete(c.Request.Context(), room.ID, room.Code); err != nil {
			log.Error().Err(err).Msg("failed to delete room metadata")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
			return
		}

		log.Info().Str("room", room.ID).Str("host", room.CreatorID).Msg("room deleted")
		c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
	}
}

// resolveRoomID turns a path identifier (shareable code or full id)
// into a room id, writing the error response itself on failure.
func resolveRoomID(c *gin.Context, rooms *store.Rooms, identifier string) (string, error) {
	if len(identifier) != roomCodeLength {
		return identifier, nil
	}
	id, err := rooms.ResolveCode(c.Request.Context(), identifier)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return "", err
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve room code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve room"})
		return "", err
	}
	return id, nil
}

// generateRoomCode generates a random shareable room code.
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		code[i] = codeChars[n.Int64()]
	}
	return string(code)
}

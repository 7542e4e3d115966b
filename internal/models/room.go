package models

import "time"

// RoomMetadata is the management-API view of a room. It describes the
// rendezvous point (id, shareable code, who created it), not the live
// signaling state, which exists only in-process for the lifetime of an
// epoch.
type RoomMetadata struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"` // short, shareable room code (e.g. "ABCD123")
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int       `json:"memberCount"` // live count, 0..2, filled from the hub on read
}

// CreateRoomResponse is the response for creating a room.
type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

package models

import (
	"strings"
	"time"
)

// RoomType classifies rooms for lecture or laboratory sessions.
type RoomType string

const (
	RoomTypeLecture    RoomType = "LECTURE"
	RoomTypeLaboratory RoomType = "LABORATORY"
	RoomTypeUnknown    RoomType = ""
)

// ParseRoomType normalises free-form room type labels such as "Lab" or "Lecture".
func ParseRoomType(raw string) RoomType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lab", "laboratory", "computer lab":
		return RoomTypeLaboratory
	case "lec", "lecture", "classroom":
		return RoomTypeLecture
	}
	return RoomTypeUnknown
}

// Room is a bookable classroom or laboratory.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Building  string    `db:"building" json:"building"`
	Capacity  int       `db:"capacity" json:"capacity"`
	RoomType  string    `db:"room_type" json:"room_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Type returns the normalised room type.
func (r Room) Type() RoomType {
	return ParseRoomType(r.RoomType)
}

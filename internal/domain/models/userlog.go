// internal/domain/models/userlog.go
package models

// UserLog is one entry of the append-only activity log.
// Username is denormalized at write time and never rewritten.
type UserLog struct {
	ID        string `bson:"_id" json:"id"`
	UserID    string `bson:"user_id" json:"userId"`
	Username  string `bson:"username" json:"username"`
	Action    string `bson:"action" json:"action"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"` // epoch millis
}

// Package models defines the persisted data model: user records with their
// rolling activity logs, session markers and the global activity feed, plus
// the view types derived from them.
//
// All values are JSON encoded with camelCase field names, so records written
// by the mobile app read back unchanged.
package models

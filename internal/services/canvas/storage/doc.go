// Package storage defines the persistence contract for canvas relationship
// data: workspaces, memberships, teams, collections, scenes, and the sealed
// room credentials bound to scenes.
package storage

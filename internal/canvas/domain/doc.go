// Package domain defines the canvas entities shared across services:
// workspaces, members, teams, collections, and scenes, together with their
// validation rules and identifier scheme.
package domain

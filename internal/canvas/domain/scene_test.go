package domain

import (
	"errors"
	"testing"
)

func TestCreateScene(t *testing.T) {
	scene, err := CreateScene(CreateSceneInput{
		WorkspaceID:          "ws1",
		CollectionID:         "col1",
		Name:                 " Q3 Planning ",
		CollaborationEnabled: true,
	}, fixedNow, fixedID("scene1"))
	if err != nil {
		t.Fatalf("CreateScene() error = %v", err)
	}
	if scene.Name != "Q3 Planning" {
		t.Errorf("Name = %q, want trimmed", scene.Name)
	}
	if !scene.CollaborationEnabled {
		t.Error("CollaborationEnabled = false, want true")
	}
	if scene.HasRoom() {
		t.Error("HasRoom() = true for a fresh scene")
	}

	if _, err := CreateScene(CreateSceneInput{Name: "x"}, fixedNow, fixedID("s")); !errors.Is(err, ErrSceneEmptyWorkspaceID) {
		t.Errorf("missing workspace error = %v, want %v", err, ErrSceneEmptyWorkspaceID)
	}
	if _, err := CreateScene(CreateSceneInput{WorkspaceID: "ws1"}, fixedNow, fixedID("s")); !errors.Is(err, ErrSceneNameEmpty) {
		t.Errorf("missing name error = %v, want %v", err, ErrSceneNameEmpty)
	}
}

func TestSceneHasRoom(t *testing.T) {
	scene := Scene{RoomID: "room1"}
	if scene.HasRoom() {
		t.Error("HasRoom() = true without an encrypted key")
	}
	scene.RoomKeyEncrypted = []byte{1, 2, 3}
	if !scene.HasRoom() {
		t.Error("HasRoom() = false with room id and key set")
	}
}

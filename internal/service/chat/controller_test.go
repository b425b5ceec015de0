package chat_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	chatmodel "github.com/yjlabs/mimic/backend/internal/model/chat"
	"github.com/yjlabs/mimic/backend/internal/model/persona"
	"github.com/yjlabs/mimic/backend/internal/service/ai"
	chat "github.com/yjlabs/mimic/backend/internal/service/chat"
	"github.com/yjlabs/mimic/backend/internal/state"
	"github.com/yjlabs/mimic/backend/internal/store"
)

const fallbackText = "⚠️ 오류가 발생했습니다. 다시 시도해주세요."

// scriptedGenerator answers every call with a fixed result and counts calls.
type scriptedGenerator struct {
	calls int
	reply string
	err   error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.reply, g.err
}

func TestNewControllerCreatesFirstSession(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)

	sessions := ctrl.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session after boot, got %d", len(sessions))
	}
	if ctrl.ActiveSessionID() != sessions[0].ID {
		t.Fatal("the created session must be active")
	}

	messages := ctrl.Messages()
	if len(messages) != 1 || messages[0].Sender != chatmodel.SenderAssistant {
		t.Fatalf("expected a single assistant opener, got %+v", messages)
	}
}

func TestNewControllerRestoresExistingState(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &scriptedGenerator{reply: "hi"}

	first := chat.NewController(s, gen, nil)
	created := first.CreateSessionNamed("도우미", "친절한 AI")
	first.SendMessage(context.Background(), "hello")

	restored := chat.NewController(s, gen, nil)
	if restored.ActiveSessionID() != created.ID {
		t.Fatal("restore must select the newest session")
	}
	messages := restored.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 restored messages, got %d", len(messages))
	}
	if messages[1].Text != "hello" || messages[2].Text != "hi" {
		t.Fatalf("transcript not restored: %+v", messages)
	}
}

func TestBootstrapCapturesProfile(t *testing.T) {
	gen := &scriptedGenerator{reply: "호출되면 안 됨"}
	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)

	profile := "따뜻하고 유머러스한 선생님이에요."
	reply, sent := ctrl.SendMessage(context.Background(), profile)
	if !sent {
		t.Fatal("bootstrap send must not be ignored")
	}
	if gen.calls != 0 {
		t.Fatalf("bootstrap must not call the generator, got %d calls", gen.calls)
	}

	if got := ctrl.ActivePersona().Profile; got != profile {
		t.Fatalf("profile not captured: %q", got)
	}

	messages := ctrl.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected exactly 2 messages after bootstrap, got %d", len(messages))
	}
	if messages[0].Sender != chatmodel.SenderAssistant || messages[1].Sender != chatmodel.SenderAssistant {
		t.Fatal("bootstrap transcript must be opener + acknowledgment")
	}
	if messages[1].Text != reply.Text {
		t.Fatal("returned reply must be the acknowledgment")
	}

	session := ctrl.Sessions()[0]
	if session.Title != persona.DefaultName {
		t.Fatalf("title must reflect the persona name, got %q", session.Title)
	}
	if session.LastMessage != reply.Text {
		t.Fatalf("preview must reflect the acknowledgment, got %q", session.LastMessage)
	}
}

func TestBootstrapRunsAtMostOnce(t *testing.T) {
	gen := &scriptedGenerator{reply: "반가워요"}
	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)

	ctrl.SendMessage(context.Background(), "상냥한 AI")
	ctrl.SendMessage(context.Background(), "안녕")

	if gen.calls != 1 {
		t.Fatalf("second send must reach the generator exactly once, got %d calls", gen.calls)
	}
	messages := ctrl.Messages()
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[2].Sender != chatmodel.SenderUser || messages[3].Text != "반가워요" {
		t.Fatalf("unexpected transcript tail: %+v", messages[2:])
	}
	if got := ctrl.ActivePersona().Profile; got != "상냥한 AI" {
		t.Fatalf("profile must keep the bootstrap capture, got %q", got)
	}
}

func TestSendMessageIgnoresBlankInput(t *testing.T) {
	gen := &scriptedGenerator{reply: "hi"}
	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)

	before := ctrl.Messages()
	for _, input := range []string{"", "   ", "\n\t"} {
		if _, sent := ctrl.SendMessage(context.Background(), input); sent {
			t.Fatalf("input %q must be ignored", input)
		}
	}

	if gen.calls != 0 {
		t.Fatal("blank input must not reach the generator")
	}
	if !reflect.DeepEqual(before, ctrl.Messages()) {
		t.Fatal("blank input must not change state")
	}
}

func TestSendMessageRoundTripAcrossSelect(t *testing.T) {
	gen := &scriptedGenerator{reply: "hi"}
	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)

	created := ctrl.CreateSessionNamed("도우미", "친절한 AI")
	ctrl.SendMessage(context.Background(), "hello")

	other := ctrl.CreateSession()
	if err := ctrl.SelectSession(other.ID); err != nil {
		t.Fatalf("SelectSession err: %v", err)
	}
	if err := ctrl.SelectSession(created.ID); err != nil {
		t.Fatalf("SelectSession err: %v", err)
	}

	messages := ctrl.Messages()
	wantSenders := []chatmodel.Sender{chatmodel.SenderAssistant, chatmodel.SenderUser, chatmodel.SenderAssistant}
	if len(messages) != len(wantSenders) {
		t.Fatalf("expected %d messages, got %d", len(wantSenders), len(messages))
	}
	for i, want := range wantSenders {
		if messages[i].Sender != want {
			t.Fatalf("message %d sender = %q, want %q", i, messages[i].Sender, want)
		}
	}
	if messages[1].Text != "hello" || messages[2].Text != "hi" {
		t.Fatalf("unexpected transcript: %+v", messages)
	}
}

func TestNamedCreateWithProfileSkipsBootstrap(t *testing.T) {
	gen := &scriptedGenerator{reply: "네, 바로 도와드릴게요"}
	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)

	ctrl.CreateSessionNamed("코딩봇", "코드 리뷰 전문가")
	ctrl.SendMessage(context.Background(), "리뷰 부탁해")

	if gen.calls != 1 {
		t.Fatal("a session created with a profile must go straight to generation")
	}
	if got := ctrl.ActivePersona().Profile; got != "코드 리뷰 전문가" {
		t.Fatalf("explicit profile must survive the first send, got %q", got)
	}
}

func TestSelectSessionIdempotent(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), &scriptedGenerator{reply: "hi"}, nil)
	id := ctrl.ActiveSessionID()

	if err := ctrl.SelectSession(id); err != nil {
		t.Fatalf("SelectSession err: %v", err)
	}
	firstMessages := ctrl.Messages()
	firstPersona := ctrl.ActivePersona()

	if err := ctrl.SelectSession(id); err != nil {
		t.Fatalf("SelectSession err: %v", err)
	}
	if !reflect.DeepEqual(firstMessages, ctrl.Messages()) {
		t.Fatal("repeated select must yield identical messages")
	}
	if firstPersona != ctrl.ActivePersona() {
		t.Fatal("repeated select must yield identical persona")
	}
	if ctrl.ActiveSessionID() != id {
		t.Fatal("repeated select must keep the selection")
	}
}

func TestSelectSessionUnknown(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)
	if err := ctrl.SelectSession("missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteLastSessionCreatesReplacement(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)
	original := ctrl.ActiveSessionID()

	if err := ctrl.DeleteSession(original); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}

	sessions := ctrl.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected exactly 1 session after deleting the last one, got %d", len(sessions))
	}
	if sessions[0].ID == original {
		t.Fatal("replacement must carry a fresh id")
	}
	messages := ctrl.Messages()
	if len(messages) != 1 || messages[0].Sender != chatmodel.SenderAssistant {
		t.Fatalf("replacement transcript must hold only the opener, got %+v", messages)
	}
}

func TestDeleteActiveSelectsNextSession(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)
	older := ctrl.ActiveSessionID()
	newer := ctrl.CreateSession()

	if err := ctrl.DeleteSession(newer.ID); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
	if ctrl.ActiveSessionID() != older {
		t.Fatal("deleting the active session must select the first remaining one")
	}
}

func TestDeleteSessionDropsRecords(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &scriptedGenerator{reply: "hi"}
	ctrl := chat.NewController(s, gen, nil)

	doomed := ctrl.CreateSessionNamed("임시", "테스트용")
	ctrl.SendMessage(context.Background(), "기록 남기기")

	if err := ctrl.DeleteSession(doomed.ID); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
	if _, ok := s.Get(store.MessagesKey(doomed.ID)); ok {
		t.Fatal("transcript record must be removed")
	}
	if _, ok := s.Get(store.ProfileKey(doomed.ID)); ok {
		t.Fatal("profile record must be removed")
	}
}

func TestDeleteAllLeavesSingleFreshSession(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &scriptedGenerator{reply: "hi"}
	ctrl := chat.NewController(s, gen, nil)

	a := ctrl.CreateSessionNamed("하나", "프로필 하나")
	ctrl.SendMessage(context.Background(), "첫 세션")
	b := ctrl.CreateSessionNamed("둘", "프로필 둘")
	ctrl.SendMessage(context.Background(), "둘째 세션")

	ctrl.DeleteAll()

	sessions := ctrl.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected exactly 1 session after delete-all, got %d", len(sessions))
	}
	if sessions[0].ID == a.ID || sessions[0].ID == b.ID {
		t.Fatal("delete-all must not reuse an old session id")
	}
	for _, old := range []string{a.ID, b.ID} {
		if _, ok := s.Get(store.MessagesKey(old)); ok {
			t.Fatalf("transcript for %s must be gone", old)
		}
		if _, ok := s.Get(store.ProfileKey(old)); ok {
			t.Fatalf("profile for %s must be gone", old)
		}
	}
}

func TestRegistryNeverEmpty(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)

	assertNonEmpty := func(step string) {
		t.Helper()
		if len(ctrl.Sessions()) == 0 {
			t.Fatalf("registry empty after %s", step)
		}
	}

	assertNonEmpty("boot")
	created := ctrl.CreateSession()
	assertNonEmpty("create")
	_ = ctrl.DeleteSession(created.ID)
	assertNonEmpty("delete")
	ctrl.DeleteAll()
	assertNonEmpty("delete-all")
	_ = ctrl.DeleteSession(ctrl.ActiveSessionID())
	assertNonEmpty("delete last")
}

func TestSendMessageFallbackOnGenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("network down")}
	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)
	ctrl.CreateSessionNamed("도우미", "친절한 AI")

	reply, sent := ctrl.SendMessage(context.Background(), "test")
	if !sent {
		t.Fatal("send must not be ignored")
	}
	if reply.Text != fallbackText {
		t.Fatalf("expected fallback text, got %q", reply.Text)
	}

	messages := ctrl.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[1].Sender != chatmodel.SenderUser || messages[1].Text != "test" {
		t.Fatal("user message must be appended before the fallback")
	}
	if messages[2].Sender != chatmodel.SenderAssistant || messages[2].Text != fallbackText {
		t.Fatal("fallback must be appended as an assistant message")
	}

	if ctrl.Typing() {
		t.Fatal("typing flag must reset after the failure path")
	}
	if got := ctrl.Sessions()[0].LastMessage; got != fallbackText {
		t.Fatalf("preview must carry the fallback text, got %q", got)
	}
}

func TestSendMessageWithoutGeneratorFallsBack(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)
	ctrl.CreateSessionNamed("도우미", "친절한 AI")

	reply, _ := ctrl.SendMessage(context.Background(), "안녕")
	if reply.Text != fallbackText {
		t.Fatalf("nil generator must produce the fallback, got %q", reply.Text)
	}
}

func TestStaleResponseDoesNotLeakAcrossSessions(t *testing.T) {
	release := make(chan string)
	gen := ai.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		return <-release, nil
	})

	ctrl := chat.NewController(store.NewMemoryStore(), gen, nil)
	ctrl.CreateSessionNamed("도우미", "친절한 AI")
	origin := ctrl.ActiveSessionID()

	done := make(chan chatmodel.Message, 1)
	go func() {
		reply, _ := ctrl.SendMessage(context.Background(), "hello")
		done <- reply
	}()

	waitForTyping(t, ctrl)

	// Switch away while the generation call is still in flight.
	other := ctrl.CreateSession()
	release <- "hi"
	reply := <-done
	if reply.Text != "hi" {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	// The now-active session's view must be untouched.
	if ctrl.ActiveSessionID() != other.ID {
		t.Fatal("active session changed unexpectedly")
	}
	for _, msg := range ctrl.Messages() {
		if msg.Text == "hi" || msg.Text == "hello" {
			t.Fatalf("stale response leaked into the active view: %+v", msg)
		}
	}

	// The originating session's persisted log received the turn.
	if err := ctrl.SelectSession(origin); err != nil {
		t.Fatalf("SelectSession err: %v", err)
	}
	messages := ctrl.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 persisted messages, got %d", len(messages))
	}
	if messages[1].Text != "hello" || messages[2].Text != "hi" {
		t.Fatalf("origin transcript incomplete: %+v", messages)
	}
}

func waitForTyping(t *testing.T, ctrl *chat.Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !ctrl.Typing() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the typing flag")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUpdatePersonaRenamesActiveTitle(t *testing.T) {
	ctrl := chat.NewController(store.NewMemoryStore(), nil, nil)

	name := "코딩봇"
	updated := ctrl.UpdatePersona(state.PersonaPatch{Name: &name})
	if updated.Name != name {
		t.Fatalf("persona name not updated: %q", updated.Name)
	}
	if got := ctrl.Sessions()[0].Title; got != name {
		t.Fatalf("active session title must follow the persona name, got %q", got)
	}
}

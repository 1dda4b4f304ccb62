package session

import (
	"fmt"
	"testing"

	"healthmate-backend/internal/models"
)

func TestLog_AppendKeepsOrder(t *testing.T) {
	l := NewLog()

	for i := 0; i < 6; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		before := l.Len()
		if _, err := l.Append(role, fmt.Sprintf("turn-%d", i)); err != nil {
			t.Fatalf("Append err: %v", err)
		}
		if l.Len() != before+1 {
			t.Fatalf("expected length %d, got %d", before+1, l.Len())
		}
	}

	turns := l.All()
	for i, turn := range turns {
		if turn.Text != fmt.Sprintf("turn-%d", i) {
			t.Errorf("position %d: got %q", i, turn.Text)
		}
	}
	if turns[0].Role != models.RoleUser || turns[1].Role != models.RoleAssistant {
		t.Errorf("roles not preserved: %v", turns[:2])
	}
}

func TestLog_RejectsUnknownRole(t *testing.T) {
	l := NewLog()

	if _, err := l.Append("system", "hi"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := l.Append("", "hi"); err == nil {
		t.Fatal("expected error for empty role")
	}
	if l.Len() != 0 {
		t.Fatalf("rejected turns must not be stored")
	}
}

func TestLog_AllReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(models.RoleUser, "original")

	turns := l.All()
	turns[0].Text = "edited"

	if l.All()[0].Text != "original" {
		t.Fatal("transcript was mutated through All()")
	}
}

func TestLog_AppendExchange(t *testing.T) {
	l := NewLog()
	l.Append(models.RoleUser, "earlier")

	pair, err := l.AppendExchange("question", "answer")
	if err != nil {
		t.Fatalf("AppendExchange err: %v", err)
	}
	if len(pair) != 2 || pair[0].Role != models.RoleUser || pair[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected pair %+v", pair)
	}

	turns := l.All()
	if len(turns) != 3 || turns[1].Text != "question" || turns[2].Text != "answer" {
		t.Errorf("exchange not appended in order: %+v", turns)
	}
}

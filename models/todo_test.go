package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedDateAfter(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	tests := []struct {
		name    string
		prev    string
		next    string
		current *time.Time
		want    *time.Time
	}{
		{"into completed", TodoPending, TodoCompleted, nil, &now},
		{"out of completed", TodoCompleted, TodoInProgress, &earlier, nil},
		{"completed stays completed", TodoCompleted, TodoCompleted, &earlier, &earlier},
		{"between open statuses", TodoPending, TodoInProgress, nil, nil},
		{"cancelled to pending keeps value", TodoCancelled, TodoPending, &earlier, &earlier},
		{"created as completed", "", TodoCompleted, nil, &now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompletedDateAfter(tt.prev, tt.next, tt.current, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v, want %v", *got, *tt.want)
		})
	}
}

func TestTodoFilter_Match(t *testing.T) {
	invoiceID := 2
	todos := []Todo{
		{ID: 1, Title: "Send Invoice reminder", Status: TodoCompleted, Priority: PriorityHigh},
		{ID: 2, Title: "Call client", Description: "about the INVOICE total", Status: TodoCompleted, Priority: PriorityLow, InvoiceID: &invoiceID},
		{ID: 3, Title: "Invoice follow-up", Status: TodoPending, Priority: PriorityHigh, InvoiceID: &invoiceID},
		{ID: 4, Title: "Rate card", Description: "quarterly review", Status: TodoCompleted, Priority: PriorityMedium},
		{ID: 5, Title: "ÉTUDE de facture", Status: TodoPending, Priority: PriorityUrgent},
	}

	match := func(f TodoFilter) []int {
		var ids []int
		for _, td := range todos {
			if f.Match(td) {
				ids = append(ids, td.ID)
			}
		}
		return ids
	}

	assert.Equal(t, []int{1, 2}, match(TodoFilter{Status: TodoCompleted, Search: "invoice"}))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, match(TodoFilter{Status: "all"}))
	assert.Equal(t, []int{1, 3}, match(TodoFilter{Priority: PriorityHigh}))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, match(TodoFilter{Priority: "all"}))
	assert.Equal(t, []int{1}, match(TodoFilter{Priority: PriorityHigh, Status: TodoCompleted}))
	assert.Equal(t, []int{5}, match(TodoFilter{Search: "étude"}))
	assert.Equal(t, []int{2, 3}, match(TodoFilter{InvoiceID: &invoiceID}))
	assert.Equal(t, []int{3}, match(TodoFilter{InvoiceID: &invoiceID, Status: TodoPending, Search: "follow"}))
	assert.Empty(t, match(TodoFilter{Search: "nothing like this"}))
}

func TestTodoInput_Validate(t *testing.T) {
	zero := 0
	in := TodoInput{Title: "  Chase payment  ", InvoiceID: &zero}

	require.Empty(t, in.Validate())
	assert.Equal(t, "Chase payment", in.Title)
	assert.Nil(t, in.InvoiceID)
	assert.Equal(t, TodoPending, in.Status)
	assert.Equal(t, PriorityMedium, in.Priority)

	blank := TodoInput{Title: "   "}
	assert.Equal(t, "title is required", blank.Validate())

	bad := TodoInput{Title: "x", Status: "done"}
	assert.Contains(t, bad.Validate(), "status must be one of")

	badPriority := TodoInput{Title: "x", Priority: "whenever"}
	assert.Contains(t, badPriority.Validate(), "priority must be one of")
}

func TestTodoPatch_Apply(t *testing.T) {
	invoiceID := 7
	due := NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	completed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cur := Todo{ID: 1, Title: "t", InvoiceID: &invoiceID, DueDate: &due, CompletedDate: &completed}

	unlink := 0
	title := "  renamed "
	got := TodoPatch{InvoiceID: &unlink, Title: &title, DueDate: &Date{}}.Apply(cur)

	assert.Nil(t, got.InvoiceID)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, &completed, got.CompletedDate)
	assert.Equal(t, 7, *cur.InvoiceID, "patch must not modify the source record")
}

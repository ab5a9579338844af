package attendanceService

import (
	"Attendify/internal/entity"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func feedEvent(sectionID, studentID string) entity.AttendanceEvent {
	return entity.AttendanceEvent{
		SectionID:   sectionID,
		StudentID:   studentID,
		Status:      string(entity.AttendanceStatusPresent),
		SubmittedAt: time.Now(),
	}
}

func TestFeedHubDeliversPerSection(t *testing.T) {
	hub := NewFeedHub()

	first, cancelFirst := hub.Subscribe("section-a")
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe("section-a")
	defer cancelSecond()
	other, cancelOther := hub.Subscribe("section-b")
	defer cancelOther()

	hub.Publish(feedEvent("section-a", "student-1"))

	for _, ch := range []<-chan entity.AttendanceEvent{first, second} {
		select {
		case event := <-ch:
			require.Equal(t, "student-1", event.StudentID)
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}

	select {
	case <-other:
		t.Fatal("event leaked to another section's feed")
	default:
	}
}

func TestFeedHubUnsubscribe(t *testing.T) {
	hub := NewFeedHub()

	events, cancel := hub.Subscribe("section-a")
	require.Equal(t, 1, hub.Subscribers("section-a"))

	cancel()
	require.Zero(t, hub.Subscribers("section-a"))

	_, open := <-events
	require.False(t, open)

	// Publishing after the listener left must not panic or block.
	hub.Publish(feedEvent("section-a", "student-1"))

	// cancel is idempotent.
	cancel()
}

func TestFeedHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewFeedHub()

	events, cancel := hub.Subscribe("section-a")
	defer cancel()

	// One past the buffer; the extra event is dropped, not delivered late.
	for i := 0; i < 17; i++ {
		hub.Publish(feedEvent("section-a", "student-1"))
	}

	received := 0
	for {
		select {
		case <-events:
			received++
			continue
		default:
		}
		break
	}

	require.Equal(t, 16, received)
}

func TestFeedHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewFeedHub()
	hub.Publish(feedEvent("section-a", "student-1"))
	require.Zero(t, hub.Subscribers("section-a"))
}

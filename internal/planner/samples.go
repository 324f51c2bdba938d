package planner

import "time"

// sampleTasks is the first-run list, dated relative to now so the dashboard
// has something to show.
func sampleTasks(now time.Time) []Task {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(DateLayout) }
	created := timestamp(now)
	return []Task{
		{ID: "1", Title: "Complete project proposal", Subject: "Work", DueDate: day(5), DueTime: "17:00", Priority: PriorityHigh, CreatedAt: created},
		{ID: "2", Title: "Buy groceries", Subject: "Personal", DueDate: day(1), DueTime: "12:00", Priority: PriorityMedium, CreatedAt: created},
		{ID: "3", Title: "Team meeting preparation", Subject: "Work", DueDate: day(0), DueTime: "09:30", Priority: PriorityHigh, Completed: true, CreatedAt: created, CompletedAt: created},
		{ID: "4", Title: "Gym workout", Subject: "Health", DueDate: day(0), DueTime: "18:00", Priority: PriorityLow, CreatedAt: created},
		{ID: "5", Title: "Read research paper", Subject: "Study", DueDate: day(10), DueTime: "23:59", Priority: PriorityMedium, CreatedAt: created},
	}
}

func sampleEvents(now time.Time) []Event {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(DateLayout) }
	created := timestamp(now)
	return []Event{
		{ID: "1", Title: "Project Proposal", Date: day(2), Time: "10:00", Priority: PriorityHigh, Type: EventTypeTask, CreatedAt: created},
		{ID: "2", Title: "Team Meeting", Date: day(2), Time: "14:00", Priority: PriorityMedium, Type: EventTypeEvent, CreatedAt: created},
		{ID: "3", Title: "Design Review", Date: day(-3), Time: "11:00", Priority: PriorityMedium, Type: EventTypeEvent, Completed: true, CreatedAt: created},
		{ID: "4", Title: "Client Presentation", Date: day(7), Time: "15:30", Priority: PriorityHigh, Type: EventTypeEvent, CreatedAt: created},
		{ID: "5", Title: "Code Deployment", Date: day(-5), Time: "09:00", Priority: PriorityLow, Type: EventTypeReminder, CreatedAt: created},
	}
}

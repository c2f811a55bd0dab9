package transport

type ActivityReportRequest struct {
	Category   string `json:"category"`
	Type       string `json:"type"`
	OccurredAt string `json:"occurred_at"`
	TargetID   string `json:"target_id"`
	ActorID    int    `json:"actor_id"`
}

type ActivityDeleteRequest struct {
	IDs []string `json:"ids"`
}

type ContentUpsertRequest struct {
	Kind      string `json:"kind"`
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type SnoozeRequest struct {
	Duration string `json:"duration"`
}

type StreakRequest struct {
	Category     string `json:"category"`
	Type         string `json:"type"`
	From         string `json:"from"`
	To           string `json:"to"`
	Interval     string `json:"interval"`
	AllowedBreak int    `json:"allowed_break"`
}

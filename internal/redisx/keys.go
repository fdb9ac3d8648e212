package redisx

import "time"

const (
	// Rendered pages per route: hash page:{path}, field = raw query -> cached page
	KeyPage = "page:%s"

	// Revalidation counter per route: page:ver:{path}
	KeyPageVersion = "page:ver:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLPage        = 5 * time.Minute
	TTLPageVersion = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)

// ABOUTME: Public types for the newswire engine API
// ABOUTME: Aliases the domain models so callers need not import core packages

package engine

import (
	"newswire-api/core/archive"
	"newswire-api/core/domain"
	"newswire-api/core/scheduler"
)

type (
	// Result is the outcome for one source URL
	Result = domain.FetchResult

	// Article is a structured record extracted from a page
	Article = domain.Article

	// Link is a same-origin anchor found on a page
	Link = domain.Link

	// RuleSet names the selectors used for one site
	RuleSet = domain.RuleSet

	// Source is a registered source with its rules and owner
	Source = domain.Source

	// QueueStatus counts background tasks per state
	QueueStatus = domain.QueueStatus

	// ArchiveEntry describes one daily archive file
	ArchiveEntry = archive.Entry

	// ScheduledJob describes a cron job
	ScheduledJob = scheduler.Job
)

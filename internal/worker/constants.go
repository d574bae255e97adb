package worker

// LogMsgWorkerJobFailed is logged when a worker fails to process a job.
const LogMsgWorkerJobFailed = "Worker job failed"

// Log messages for the delayed craft sweep.
const (
	LogMsgSweepStarting  = "Delayed craft sweep starting"
	LogMsgSweepCompleted = "Delayed craft sweep completed"
	LogMsgSweepFailed    = "Delayed craft sweep failed"
)

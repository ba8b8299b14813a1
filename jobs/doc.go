// Package jobs runs the notifier's background maintenance: the retention
// sweep that prunes old event-log rows. A scheduler enqueues prune jobs on a
// fixed interval and a worker drains the queue and executes them.
package jobs

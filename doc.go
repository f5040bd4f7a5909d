// Package main provides the entry point for the user group membership service.
// It initializes and runs a web server using the Fiber framework that lets
// callers create criteria-driven user groups, evaluate their rosters and feed
// in platform events through a REST API. The application uses gorm for data
// persistence and a worker pool that re-evaluates group memberships when
// relevant events arrive.
package main

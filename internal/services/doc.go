// Package services contains the application services over the domain store:
// the session/identity manager (AuthService) and the progress and scoring
// engine (ProgressService). Both are synchronous and return errors wrapping
// the sentinels in package common.
package services

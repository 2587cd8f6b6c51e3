// Package report renders a planned schedule as text or JSON.
package report

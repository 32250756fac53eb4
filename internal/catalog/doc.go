// Package catalog defines the records managed by the back office (colors,
// sizes and product variants), the drafts submitted to create or update them,
// and display helpers shared by the views.
package catalog

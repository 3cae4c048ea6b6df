// Package models defines the job and restoration pipeline records consumed by
// the script generator and the pipeline controller.
//
// Every stage parameter set carries documented defaults (DefaultXxx
// constructors). Job files decode on top of those defaults, so a job only has
// to name the values it changes. Optional tunables are pointers: nil means
// "let the filter decide" and is rendered as an omitted argument.
package models

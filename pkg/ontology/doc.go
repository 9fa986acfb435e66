// Package ontology is the single source of truth for the closed type
// vocabularies of the 6-dimension model (groups, people, things, connections,
// events, knowledge). Extending the platform with a new domain concept means
// adding one value to one vocabulary here; no other code changes are required.
package ontology

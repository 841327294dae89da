// Package preflight provides readiness checks for the filesystem paths,
// credentials, and external binaries that yt2wp depends on.
//
// The CLI "yt2wp check" command runs RunAll and CheckSystemDeps and renders
// the results as a table. The pipeline itself does not call these checks;
// it reports the same conditions as prerequisite failures when it reaches them.
package preflight

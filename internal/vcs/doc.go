// Package vcs reads pending changes from git or svn.
//
// The git backend reports staged changes only. The svn backend has no
// staging area and reports every working-copy modification parsed from
// `svn status`. [Select] picks a backend explicitly or by probing for .git
// and then .svn.
package vcs

// Commitgate is a pre-commit gate that asks a language model to review
// pending changes before they are committed.
//
// It reviews staged files in git, or modified working-copy files in svn,
// shows the findings in the console, a Markdown report or a local web
// dashboard, and exits 0 to let the commit proceed or 1 to block it.
//
// Usage:
//
//	commitgate                        # review pending changes (used by the hook)
//	commitgate --web                  # review and decide in the browser dashboard
//	commitgate init-config            # create ~/.ai-codereview.env
//	commitgate hook install           # run before every git commit
//	commitgate doctor                 # check configuration and credentials
package main

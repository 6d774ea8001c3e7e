// Package supervisor watches the parent process and triggers shutdown when
// it dies.
//
// When the gateway runs as a child of a desktop MCP client, nothing else
// reaps it if the client crashes. The supervisor polls a liveness probe on
// an interval and fires its shutdown callback once when the probe first
// reports the parent gone. The probe is injected so tests never depend on
// real process genealogy.
package supervisor

/*
Package tui implements the terminal front end of cream-browser.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: holds the shell and one viewport per tab
  - Update: routes keys to the focused tab's input box and drains the
    shell loop
  - View: lays out the pane tree, tab bars, status bars and the prompt

# Key Components

  - model.go: Model, Init and Update, the command.UI implementation
  - keys.go: key routing between global bindings and the input box
  - render.go: recursive pane layout with lipgloss
  - pane.go: per-tab viewport state and scrolling

# Threading Model

Bubble Tea's event loop is the UI goroutine. Protocol modules load on
their own goroutines and post callbacks to the shell loop; a tea.Cmd
waits on the loop and turns each wake-up into a loopMsg, and Update
drains the queued callbacks. The control socket goes through the same
queue, so browser state is only ever touched inside Update.

# Keys

Keys are resolved in this order:
  - global bindings (ctrl+c quits by default)
  - input bindings while the input box has focus, then the box itself
  - normal bindings through the input box, including sequences like gt
*/
package tui

/*
Package keybinds maps key presses to command lines.

# Contexts

  - global: bindings available everywhere
  - normal: the page has focus and the input box is idle
  - input: the input box has focus

A key bound in a specific context shadows the global binding.

# Actions

An action is a command line, exactly as it would be typed after ':' in
the input box. "o" is bound to "prompt :open ", which fills the box and
lets the user type the URI.

# Multi-Key Sequences

Keys that are not named keys ("up", "tab") and carry no modifier are
sequences: "gt" fires after "g" then "t". While a typed prefix can
still complete a sequence the registry reports a partial match.

# Configuration File Format

Bindings from the startup script can be overridden in keybinds.json.
Comments are allowed; an empty command removes a binding.

	{
	  "version": "1.0",
	  // open links in a new tab by default
	  "normal": {
	    "f": "prompt :tabfollow ",
	    "d": ""
	  }
	}

# Validation

The validator reports invalid keys, empty or unknown commands, rebound
reserved keys, keys hidden by a longer sequence, and shadowed global
bindings.
*/
package keybinds

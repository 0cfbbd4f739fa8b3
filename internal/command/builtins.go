package command

// RegisterBuiltins adds every built-in command to d and returns it.
func RegisterBuiltins(d *Dispatcher) *Dispatcher {
	for _, group := range [][]*Command{
		tabCommands(),
		paneCommands(),
		pageCommands(),
		shellCommands(),
	} {
		for _, c := range group {
			d.Register(c)
		}
	}
	return d
}

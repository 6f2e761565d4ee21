// Package command turns a resolved binary into the language-server launch
// descriptor handed to the editor host.
package command

import (
	"strings"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/resolver"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/shell"
)

// Subcommand starts rari in language-server mode.
const Subcommand = "lsp"

// ContentRootVar points rari at the project's content files.
const ContentRootVar = "CONTENT_ROOT"

// Descriptor is the command line and environment to launch.
type Descriptor struct {
	Command string         `json:"command" yaml:"command"`
	Args    []string       `json:"args" yaml:"args"`
	Env     []shell.EnvVar `json:"env" yaml:"env"`
}

// Build returns the launch descriptor for bin in the project at root.
// CONTENT_ROOT comes first; resolver-supplied variables follow in order.
func Build(bin *resolver.ResolvedBinary, root string) Descriptor {
	args := make([]string, 0, 1+len(bin.Args))
	args = append(args, Subcommand)
	args = append(args, bin.Args...)

	env := make([]shell.EnvVar, 0, 1+len(bin.Env))
	env = append(env, shell.EnvVar{Name: ContentRootVar, Value: ContentRoot(root)})
	env = append(env, bin.Env...)

	return Descriptor{Command: bin.Path, Args: args, Env: env}
}

// ContentRoot returns "<root>/files".
func ContentRoot(root string) string {
	return strings.TrimRight(root, "/") + "/files"
}

func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(append([]string{d.Command}, d.Args...), " "))
	for _, kv := range d.Environ() {
		b.WriteString("\n  ")
		b.WriteString(kv)
	}
	return b.String()
}

// Environ renders Env as NAME=value strings.
func (d Descriptor) Environ() []string {
	out := make([]string, len(d.Env))
	for i, v := range d.Env {
		out[i] = v.String()
	}
	return out
}

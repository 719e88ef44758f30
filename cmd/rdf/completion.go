// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/rdftools/internal/cli"
	"github.com/kraklabs/rdftools/internal/errors"
	"github.com/kraklabs/rdftools/pkg/rdfio"
)

// formatsPlaceholder is replaced with the registered format names.
const formatsPlaceholder = "@FORMATS@"

// bashCompletionTemplate is the bash completion script for rdf.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for rdf
# Installation:
#   source <(rdf completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(rdf completion bash)' >> ~/.bashrc

_rdf_completion() {
    local cur prev commands formats common
    commands="validate convert select query shell completion"
    formats="@FORMATS@"
    common="--verbose --base --input --read --use-color --help"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Format arguments
    case "${prev}" in
        -r|--read|-w|--write)
            COMPREPLY=( $(compgen -W "${formats}" -- ${cur}) )
            return 0
            ;;
    esac

    # First argument: global flags or commands
    if [ $COMP_CWORD -eq 1 ]; then
        if [[ ${cur} == -* ]] ; then
            COMPREPLY=( $(compgen -W "--verbose --version --help" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        fi
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    if [[ ${cmd} == -* ]] ; then
        cmd="${COMP_WORDS[2]}"
    fi
    case "${cmd}" in
        convert)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "${common} --output --write" -- ${cur}) )
            fi
            ;;
        query)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "${common} --query --json" -- ${cur}) )
            fi
            ;;
        select)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "${common} --subjects --predicates --objects --types --json" -- ${cur}) )
            fi
            ;;
        validate)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "${common}" -- ${cur}) )
            fi
            ;;
        shell)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "${common} --abort-on-query-error --no-startup --no-history" -- ${cur}) )
            fi
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            ;;
    esac
}

complete -o default -F _rdf_completion rdf
`

// zshCompletionTemplate is the zsh completion script for rdf.
const zshCompletionTemplate = `#compdef rdf

# Zsh completion script for rdf
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      rdf completion zsh > "${fpath[1]}/_rdf"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_rdf() {
    local -a commands common
    commands=(
        'validate:Check that RDF files parse'
        'convert:Convert RDF files between serialization formats'
        'select:Select unique subjects, predicates, objects or types'
        'query:Run a SPARQL query over RDF files'
        'shell:Start the interactive RDF shell'
        'completion:Generate shell completion script'
    )
    common=(
        '*'{-v,--verbose}'[Increase log output]'
        '(-b --base)'{-b,--base}'[Base URI]:uri:'
        '*'{-i,--input}'[Input file]:file:_files'
        '(-r --read)'{-r,--read}'[Input format]:format:(@FORMATS@)'
        '(-c --use-color)'{-c,--use-color}'[Use color in output]'
        '*:file:_files'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '(-v --verbose)'{-v,--verbose}'[Run the command with debug logging]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                convert)
                    _arguments $common \
                        '(-o --output)'{-o,--output}'[Output file]:file:_files' \
                        '(-w --write)'{-w,--write}'[Output format]:format:(@FORMATS@)'
                    ;;
                query)
                    _arguments $common \
                        '(-q --query)'{-q,--query}'[SPARQL query]:query:' \
                        '--json[Output as JSON]'
                    ;;
                select)
                    _arguments $common \
                        '(-s --subjects -p --predicates -o --objects -t --types)'{-s,--subjects}'[Unique subjects]' \
                        '(-s --subjects -p --predicates -o --objects -t --types)'{-p,--predicates}'[Unique predicates]' \
                        '(-s --subjects -p --predicates -o --objects -t --types)'{-o,--objects}'[Unique objects]' \
                        '(-s --subjects -p --predicates -o --objects -t --types)'{-t,--types}'[Unique rdf:type objects]' \
                        '--json[Output as JSON]'
                    ;;
                validate)
                    _arguments $common
                    ;;
                shell)
                    _arguments $common \
                        '--abort-on-query-error[End the shell when a query fails]' \
                        '--no-startup[Skip the startup script]' \
                        '--no-history[Do not load or save history]'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_rdf
`

// fishCompletionTemplate is the fish completion script for rdf.
const fishCompletionTemplate = `# Fish completion script for rdf
# Installation:
#   1. Load completions for current session:
#      rdf completion fish | source
#   2. Install permanently:
#      rdf completion fish > ~/.config/fish/completions/rdf.fish

# Commands
complete -c rdf -f -n "__fish_use_subcommand" -a "validate" -d "Check that RDF files parse"
complete -c rdf -f -n "__fish_use_subcommand" -a "convert" -d "Convert RDF files between serialization formats"
complete -c rdf -f -n "__fish_use_subcommand" -a "select" -d "Select unique subjects, predicates, objects or types"
complete -c rdf -f -n "__fish_use_subcommand" -a "query" -d "Run a SPARQL query over RDF files"
complete -c rdf -f -n "__fish_use_subcommand" -a "shell" -d "Start the interactive RDF shell"
complete -c rdf -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

# Global flags
complete -c rdf -n "__fish_use_subcommand" -l version -d "Show version and exit"
complete -c rdf -n "__fish_use_subcommand" -s v -l verbose -d "Run the command with debug logging"

# Flags shared by every command
set -l tools "validate convert select query shell"
complete -c rdf -n "__fish_seen_subcommand_from $tools" -s v -l verbose -d "Increase log output"
complete -c rdf -n "__fish_seen_subcommand_from $tools" -s b -l base -d "Base URI" -r
complete -c rdf -n "__fish_seen_subcommand_from $tools" -s i -l input -d "Input file" -r -F
complete -c rdf -n "__fish_seen_subcommand_from $tools" -s r -l read -d "Input format" -x -a "@FORMATS@"
complete -c rdf -n "__fish_seen_subcommand_from $tools" -s c -l use-color -d "Use color in output"

# convert command flags
complete -c rdf -n "__fish_seen_subcommand_from convert" -s o -l output -d "Output file" -r -F
complete -c rdf -n "__fish_seen_subcommand_from convert" -s w -l write -d "Output format" -x -a "@FORMATS@"

# query command flags
complete -c rdf -n "__fish_seen_subcommand_from query" -s q -l query -d "SPARQL query" -r
complete -c rdf -n "__fish_seen_subcommand_from query" -l json -d "Output as JSON"

# select command flags
complete -c rdf -n "__fish_seen_subcommand_from select" -s s -l subjects -d "Unique subjects"
complete -c rdf -n "__fish_seen_subcommand_from select" -s p -l predicates -d "Unique predicates"
complete -c rdf -n "__fish_seen_subcommand_from select" -s o -l objects -d "Unique objects"
complete -c rdf -n "__fish_seen_subcommand_from select" -s t -l types -d "Unique rdf:type objects"
complete -c rdf -n "__fish_seen_subcommand_from select" -l json -d "Output as JSON"

# shell command flags
complete -c rdf -n "__fish_seen_subcommand_from shell" -l abort-on-query-error -d "End the shell when a query fails"
complete -c rdf -n "__fish_seen_subcommand_from shell" -l no-startup -d "Skip the startup script"
complete -c rdf -n "__fish_seen_subcommand_from shell" -l no-history -d "Do not load or save history"

# completion command arguments
complete -c rdf -n "__fish_seen_subcommand_from completion" -f -a "bash" -d "Generate bash completion script"
complete -c rdf -n "__fish_seen_subcommand_from completion" -f -a "zsh" -d "Generate zsh completion script"
complete -c rdf -n "__fish_seen_subcommand_from completion" -f -a "fish" -d "Generate fish completion script"
`

var completionTemplates = map[string]string{
	"bash": bashCompletionTemplate,
	"zsh":  zshCompletionTemplate,
	"fish": fishCompletionTemplate,
}

// runCompletion prints the completion script for one shell to stdout. The
// format lists come from the rdfio registry.
//
// Usage:
//
//	rdf completion [bash|zsh|fish]
//
// Examples:
//
//	source <(rdf completion bash)           Load bash completions in current shell
//	rdf completion zsh > "${fpath[1]}/_rdf" Install zsh completions permanently
//	rdf completion fish | source            Load fish completions in current shell
func runCompletion(_ context.Context, args []string, env cli.Env) int {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprint(env.Stderr, `Usage: rdf completion <shell>

Description:
  Generate shell completion scripts for bash, zsh, or fish.

Arguments:
  shell    Shell type: bash, zsh, or fish (required)

Installation Instructions:

Bash:
  # Load completions for each session (add to ~/.bashrc)
  echo 'source <(rdf completion bash)' >> ~/.bashrc

Zsh:
  rdf completion zsh > "${fpath[1]}/_rdf"

Fish:
  rdf completion fish > ~/.config/fish/completions/rdf.fish

`)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errors.ExitSuccess
		}
		return errors.ExitUsage
	}

	if fs.NArg() != 1 {
		return errors.Report(env.Stderr, errors.NewUsageError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'rdf completion bash', 'rdf completion zsh', or 'rdf completion fish'",
		), false)
	}

	name := fs.Arg(0)
	tmpl, ok := completionTemplates[name]
	if !ok {
		return errors.Report(env.Stderr, errors.NewUsageError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", name),
			"Run 'rdf completion bash', 'rdf completion zsh', or 'rdf completion fish'",
		), false)
	}

	script := strings.ReplaceAll(tmpl, formatsPlaceholder, strings.Join(rdfio.Names(), " "))
	_, _ = fmt.Fprint(env.Stdout, script)
	return errors.ExitSuccess
}

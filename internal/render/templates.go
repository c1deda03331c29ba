package render

import (
	"regexp"
	"strings"
	"text/template"
)

var templateFuncs = template.FuncMap{
	"zfield":  zshField,
	"varname": shellVarName,
	"join":    strings.Join,
}

// zsh _describe treats a colon as the completion/description separator, so
// composite fields like "city:code" need the colon escaped.
func zshField(field string) string {
	return strings.ReplaceAll(field, ":", `\:`)
}

var nonWordPattern = regexp.MustCompile(`\W`)

func shellVarName(name string) string {
	return nonWordPattern.ReplaceAllString(name, "_")
}

var zshTemplate = template.Must(template.New("zsh").Funcs(templateFuncs).Parse(`#compdef geodex

# Completion asset generated from the sources manifest.
# Regenerate with: geodex generate

_geodex_sources() {
  local -a sources
  sources=({{ range $i, $e := .Entries }}{{ if $i }} {{ end }}{{ $e.Name }}{{ end }})
  _describe -t sources 'data source' sources
}

_geodex_fields() {
  local -a fields
  case "$words[2]" in
{{- range .Entries }}
    {{ .Name }})
      fields=({{ range $i, $f := .Vocabulary }}{{ if $i }} {{ end }}{{ zfield $f }}{{ end }})
      ;;
{{- end }}
  esac
  (( ${#fields} )) && _describe -t fields 'field' fields
}

_geodex() {
  local -a commands
  commands=(
    'generate:render completion assets from the sources manifest'
    'inspect:print the derived completion vocabulary'
    'fields:list or search the fields of a source'
    'near:find rows close to a point'
    'runs:list recent generation runs'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'geodex command' commands
    return
  fi

  case "$words[2]" in
    fields|near)
      if (( CURRENT == 3 )); then
        _geodex_sources
      else
        _geodex_fields
      fi
      ;;
    inspect)
      _geodex_sources
      ;;
  esac
}

_geodex "$@"
`))

var bashTemplate = template.Must(template.New("bash").Funcs(templateFuncs).Parse(`# bash completion for geodex, generated from the sources manifest.
# Regenerate with: geodex generate

{{ range .Entries -}}
_geodex_fields_{{ varname .Name }}="{{ join .Vocabulary " " }}"
{{ end -}}
_geodex_sources="{{ range $i, $e := .Entries }}{{ if $i }} {{ end }}{{ $e.Name }}{{ end }}"

_geodex() {
  local cur first second
  COMPREPLY=()
  cur="${COMP_WORDS[COMP_CWORD]}"
  first="${COMP_WORDS[1]}"
  second="${COMP_WORDS[2]}"

  if [ "$COMP_CWORD" -eq 1 ]; then
    COMPREPLY=( $(compgen -W "generate inspect fields near runs" -- "$cur") )
    return 0
  fi

  case "$first" in
    fields|near)
      if [ "$COMP_CWORD" -eq 2 ]; then
        COMPREPLY=( $(compgen -W "$_geodex_sources" -- "$cur") )
      else
        case "$second" in
{{- range .Entries }}
        {{ .Name }})
          COMPREPLY=( $(compgen -W "$_geodex_fields_{{ varname .Name }}" -- "$cur") )
          ;;
{{- end }}
        esac
      fi
      ;;
    inspect)
      COMPREPLY=( $(compgen -W "$_geodex_sources" -- "$cur") )
      ;;
  esac
  return 0
}

complete -F _geodex geodex
`))

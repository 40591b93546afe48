// Package retort turns component markup into virtual node trees and renders
// them to HTML.
//
// Main sub-packages:
//
//   - src/markup: tokenizer, virtual node tree and tree builder
//   - src/render: conditional inclusion (render-if, render-else-if,
//     render-else), attribute value classification and the DOM, HTML and
//     gomponents renderers
//   - src/expression: evaluation of embedded `{...}` expressions
//   - src/component: presenter imports, component files and resolvers
//   - src/config: retort.yaml and options
//   - src/util: source spans and the ParseError type shared by all stages
//   - src/core: character classes used by the scanner
//
// A typical pipeline loads an entry component with component.Load, which
// parses every presenter with markup.Parser and resolves imported components
// in declaration order, then renders it with render.Renderer.
package retort

// Package engine holds the pure rules core of Bloqueio: the game state
// snapshot, move and barrier validators, win detection, and legal-move
// enumeration.
//
// Everything here is stateless and side-effect free. The same validators
// are shared by the turn controller (to arbitrate player actions) and by
// the bot strategies (to enumerate candidate actions), so every rule
// exists in exactly one place.
//
// Rule violations are reported as *RuleError values carrying one of the
// Code* constants; callers surface the code to clients, and any rule
// error is recoverable by trying a different action.
package engine

// Package utils provides small generic slice helpers shared by the registries.
//
// Functional Programming Utilities:
//   - Map, Filter, Reduce: Generic implementations for slice processing.
//
// Slices:
//   - Contains, Any, Count
//
// Every helper returns a fresh slice; inputs are never modified.
package utils

/* some Functional Programming in Go */
// map
type mapFunc[E any, R any] func(E) R

// Map function definition of a functional programming "function"
func Map[S ~[]E, E any, R any](s S, f mapFunc[E, R]) []R {
	result := make([]R, len(s))
	for i, e := range s {
		result[i] = f(e)
	}

	return result
}

// filter
type keepFunc[E any] func(E) bool

// Filter function definition of a functional programming "function"
func Filter[S ~[]E, E any](s S, f keepFunc[E]) S {
	result := S{}
	for _, v := range s {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

// reduce
type reduceFunc[E any, A any] func(acc A, next E) A

// Reduce folds s into an accumulator starting from init.
func Reduce[E any, A any](s []E, init A, f reduceFunc[E, A]) A {
	cur := init
	for _, v := range s {
		cur = f(cur, v)
	}

	return cur
}

// Contains reports whether val is present in slice.
func Contains[E comparable](slice []E, val E) bool {
	for _, item := range slice {
		if item == val {

			return true
		}
	}

	return false
}

// Any reports whether at least one element satisfies f.
func Any[E any](s []E, f keepFunc[E]) bool {
	for _, v := range s {
		if f(v) {

			return true
		}
	}

	return false
}

// Count returns how many elements satisfy f.
func Count[E any](s []E, f keepFunc[E]) int {
	return Reduce(s, 0, func(n int, v E) int {
		if f(v) {
			return n + 1
		}
		return n
	})
}

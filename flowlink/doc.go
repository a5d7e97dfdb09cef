// Package flowlink links positions globally by minimum-cost flow. It
// is the alternative to the heuristic resolver: instead of repairing
// local mistakes, it spans one flow network over every time point at
// once and accepts the optimal integral flow as the definitive link
// set.
//
// Every position becomes a segmentation hypothesis with arcs for using
// the detection, appearing from nothing, disappearing into nothing and
// for dividing; every candidate edge becomes a linking hypothesis arc
// between two segmentation hypotheses. Arc costs encode, through a
// tunable weight vector, that omitting a genuine detection or
// fabricating an appearance is far more expensive than an ordinary
// link, while a well-scored division is cheap to accept.
//
// Problem construction and result translation live here; optimization
// is behind the Solver interface. The built-in SSPSolver computes the
// optimum with successive shortest paths, but any conformant solver
// can be plugged in.
package flowlink

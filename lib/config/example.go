package config

// ExampleConfig is a documented config file printed by the example_config
// mode.
const ExampleConfig = `[sdtrace]

#######################
# Required Variables #
#######################

# Dataset is the .sds file holding the superdroplet attributes.
Dataset = path/to/sdmout.sds

# Attributes are the attributes to analyse. List one per line.
Attributes = radius
Attributes = xi

# Output is the file format of output files. {mode} is replaced by the mode
# and {attribute} by the attribute being written ("all" when one file holds
# every attribute).
Output = sdtrace_{mode}_{attribute}

#######################
# Optional Variables #
#######################

# Consts is a YAML file overriding the physical constants rho_l, rho_sol,
# mr_sol and ionic.
# Consts = consts.yaml

# Threads is the number of threads used. Values <= 0 use every core.
# Threads = 0

# Rain keeps only superdroplets with radius >= RainRadius [microns].
# Rain = false
# RainRadius = 40

# lagrangian mode:
# EnforceUniqueness fails if a superdroplet appears twice at one time.
# EnforceUniqueness = false
# KeyedRows keeps only the output times nearest to each of Times, writing
# them to the rows of their original time index.
# KeyedRows = false
# Times = 0
# Times = 100.5

# trace mode:
# IDs is a sequence format listing the superdroplets to trace, e.g.
# 0..100 - 50. If it isn't set, Samples identifiers are drawn at random
# from [MinID, MaxID) using Seed (Samples = 0 traces all of them).
# IDs = 0..10
# Samples = 10
# MinID = 0
# MaxID = 1000
# Seed = 0

# eulerian mode:
# Indexer is the integer attribute used to rebin superdroplets and Bins is
# the number of bins. Bins = 0 uses the largest index plus one.
# Indexer = sdgbxindex
# Bins = 0
`

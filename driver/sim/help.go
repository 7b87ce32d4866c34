package sim

// helpTexts are the builtin help pages. Usage lines follow the engine's
// conventions ("Y = NAME(X)", "[A,B] = NAME(...)", "NAME ARG") so that
// callers can infer output counts from them.
var helpTexts = map[string]string{
	"class": ` CLASS  Return class name of object.
    C = CLASS(OBJ) returns the class of the object OBJ.
    Possible values are 'double', 'char', 'cell' and 'struct'.
`,
	"exist": ` EXIST  Check if variables or functions are defined.
    EXIST('A') returns:
      0 if A does not exist
      1 if A is a variable in the workspace
      2 if A is a function defined in the session
      5 if A is a built-in function
      7 if A is a directory
 
    EXIST('A','var') checks only for variables.
    EXIST('A','builtin') checks only for built-in functions.
    EXIST('A','dir') checks only for directories.
`,
	"help": ` HELP   Display help text in Command Window.
    HELP FUN displays a description of and syntax for the function FUN.
    HELP by itself lists the built-in functions.
 
    T = HELP('topic') returns the help text in a string.
`,
	"nargin": ` NARGIN Number of function input arguments.
    N = NARGIN('FUN') returns the number of declared inputs for the
    function FUN. The number is negative if the function takes a
    variable number of inputs.
`,
	"nargout": ` NARGOUT Number of function output arguments.
    N = NARGOUT('FUN') returns the number of declared outputs for the
    function FUN. The number is negative if the function has a variable
    number of outputs.
`,
	"size": ` SIZE   Size of array.
    D = SIZE(X), for M-by-N matrix X, returns the two-element row vector
    D = [M,N] containing the number of rows and columns in the matrix.
 
    [M,N] = SIZE(X) returns the number of rows and columns in separate
    output variables.
 
    M = SIZE(X,DIM) returns the length of the dimension specified by DIM.
`,
	"ndims": ` NDIMS  Number of dimensions.
    N = NDIMS(X) returns the number of dimensions in the array X.
    The number of dimensions in an array is always greater than or
    equal to 2.
`,
	"numel": ` NUMEL  Number of elements in an array.
    N = NUMEL(A) returns the number of elements in array A.
`,
	"length": ` LENGTH   Length of vector.
    LENGTH(X) returns the length of vector X. It is equivalent
    to MAX(SIZE(X)) for non-empty arrays and 0 for empty ones.
`,
	"isempty": ` ISEMPTY True for empty array.
    ISEMPTY(X) returns 1 if X is an empty array and 0 otherwise.
    An empty array has no elements, that is prod(size(X))==0.
`,
	"sort": ` SORT   Sort in ascending or descending order.
    For vectors, SORT(X) sorts the elements of X in ascending order.
    For matrices, SORT(X) sorts each column of X in ascending order.
 
    Y = SORT(X,MODE) selects the direction of the sort; MODE is
    'ascend' (default) or 'descend'.
 
    [Y,I] = SORT(X) also returns an index matrix I. If X is a vector,
    then Y = X(I).
`,
	"sin": ` SIN    Sine.
    SIN(X) is the sine of the elements of X.
`,
	"cos": ` COS    Cosine.
    COS(X) is the cosine of the elements of X.
`,
	"sqrt": ` SQRT   Square root.
    SQRT(X) is the square root of the elements of X. Complex
    results are produced if X is not positive.
`,
	"abs": ` ABS    Absolute value.
    ABS(X) is the absolute value of the elements of X. When
    X is complex, ABS(X) is the complex modulus (magnitude) of
    the elements of X.
`,
	"round": ` ROUND  Round towards nearest integer.
    Y = ROUND(X) rounds the elements of X to the nearest integers.
`,
	"sum": ` SUM Sum of elements.
    S = SUM(X) is the sum of the elements of the vector X. If X is a
    matrix, S is a row vector with the sum over each column.
 
    S = SUM(X,DIM) sums along the dimension DIM.
`,
	"min": ` MIN    Smallest component.
    For vectors, MIN(X) is the smallest element in X. For matrices,
    MIN(X) is a row vector containing the minimum element from each
    column.
 
    [Y,I] = MIN(X) returns the indices of the minimum values in vector I.
 
    MIN(X,Y) returns an array the same size as X and Y with the
    smallest elements taken from X or Y.
`,
	"max": ` MAX    Largest component.
    For vectors, MAX(X) is the largest element in X. For matrices,
    MAX(X) is a row vector containing the maximum element from each
    column.
 
    [Y,I] = MAX(X) returns the indices of the maximum values in vector I.
 
    MAX(X,Y) returns an array the same size as X and Y with the
    largest elements taken from X or Y.
`,
	"zeros": ` ZEROS  Zeros array.
    ZEROS(N) is an N-by-N matrix of zeros.
 
    ZEROS(M,N) or ZEROS([M,N]) is an M-by-N matrix of zeros.
`,
	"ones": ` ONES   Ones array.
    ONES(N) is an N-by-N matrix of ones.
 
    ONES(M,N) or ONES([M,N]) is an M-by-N matrix of ones.
`,
	"cell": ` CELL  Create cell array.
    C = CELL(N) is an N-by-N cell array of empty matrices.
 
    C = CELL(M,N) or CELL([M,N]) is an M-by-N cell array of empty
    matrices.
`,
	"deal": ` DEAL Deal inputs to outputs.
    [A,B,C] = DEAL(X,Y,Z) simply matches up the input and output
    lists. It is the same as A=X, B=Y, C=Z.
 
    [A,B,C] = DEAL(X) copies the single input to all the requested
    outputs.
`,
	"struct": ` STRUCT Create or convert to structure array.
    S = STRUCT('field1',VALUES1,'field2',VALUES2,...) creates a
    structure array with the specified fields and values. The value
    arrays VALUES1, VALUES2, etc. must be cell arrays of the same
    size, scalar cells or single values.
 
    S = STRUCT() creates a 1-by-1 structure with no fields.
`,
	"fieldnames": ` FIELDNAMES Get structure field names.
    NAMES = FIELDNAMES(S) returns a cell array of strings containing
    the structure field names associated with the structure S.
`,
	"isfield": ` ISFIELD True if field is in structure array.
    F = ISFIELD(S,'field') returns true if 'field' is the name of a
    field in the structure array S.
`,
	"disp": ` DISP Display array.
    DISP(X) displays the array, without printing the array name. In
    all other ways it's the same as leaving the semicolon off an
    expression except that empty arrays don't display.
`,
	"who": ` WHO    List current variables.
    WHO lists the variables in the current workspace.
 
    S = WHO returns a cell array containing the names of the variables
    in the workspace.
`,
	"clear": ` CLEAR  Clear variables from memory.
    CLEAR removes all variables from the workspace.
    CLEAR VARIABLES does the same thing.
 
    CLEAR NAME removes just the variable NAME from the workspace.
    CLEAR NAME1 NAME2 NAME3 removes several variables. The names may
    end in a wildcard, CLEAR A* removes all variables starting with A.
 
    The functional form, CLEAR('NAME1','NAME2'), is also supported.
`,
	"cd": ` CD     Change current working directory.
    CD DIRECTORY-SPEC sets the current directory to the one specified.
    CD .. moves to the directory above the current one.
    CD, by itself, prints out the current directory.
 
    W = CD returns the current directory as a string.
`,
	"pwd": ` PWD Show (print) current working directory.
    S = PWD returns the current directory in the string S.
`,
	"num2str": ` NUM2STR Convert numbers to a string.
    T = NUM2STR(X) converts the matrix X into a string representation T
    with about 4 digits and an exponent if required.
`,
	"sprintf": ` SPRINTF Write formatted data to string.
    STR = SPRINTF(FORMAT,A,...) formats the data in A and the other
    arguments under control of the specified FORMAT string.
    Supported conversions are %d, %i, %f, %g, %e, %s and %%.
`,
	"upper": ` UPPER  Convert string to uppercase.
    B = UPPER(A) converts any lower case characters in A to the
    corresponding upper case character and leaves all other characters
    unchanged.
`,
	"lower": ` LOWER  Convert string to lowercase.
    B = LOWER(A) converts any upper case characters in A to the
    corresponding lower case character and leaves all other characters
    unchanged.
`,
	"error": ` ERROR  Display message and abort function.
    ERROR('MSG') displays the error message and aborts the statement.
 
    ERROR('FMT',ARG1,ARG2,...) formats the message with SPRINTF first.
`,
	"ischar": ` ISCHAR  True for character array (string).
    ISCHAR(S) returns 1 if S is a character array and 0 otherwise.
`,
	"iscell": ` ISCELL True for cell array.
    ISCELL(C) returns 1 if C is a cell array and 0 otherwise.
`,
	"isstruct": ` ISSTRUCT True for structures.
    ISSTRUCT(S) returns 1 if S is a structure and 0 otherwise.
`,
	"isnumeric": ` ISNUMERIC True for numeric arrays.
    ISNUMERIC(A) returns 1 if A is a numeric array and 0 otherwise.
`,
	"pi": ` PI     3.1415926535897....
    P = PI returns the ratio of a circle's circumference to its diameter.
`,
	"inf": ` INF Infinity.
    X = INF returns the IEEE arithmetic representation for positive
    infinity.
`,
	"nan": ` NAN    Not-a-Number.
    X = NAN returns the IEEE arithmetic representation for Not-a-Number.
`,
	"eps": ` EPS  Spacing of floating point numbers.
    D = EPS returns the distance from 1.0 to the next larger double.
`,
	"i": ` I      Imaginary unit.
    Z = I returns the basic imaginary unit, sqrt(-1).
`,
	"j": ` J      Imaginary unit.
    Z = J returns the basic imaginary unit, sqrt(-1).
`,
	"true": ` TRUE   True value.
    T = TRUE returns the value 1.
`,
	"false": ` FALSE  False value.
    F = FALSE returns the value 0.
`,
}
